// Package llmsvc provides the language models behind writing analysis.
package llmsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	pkgerrors "github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
)

const maxOutputTokens = 2048

var errEmptyResponse = errors.New("empty response")

// GeminiModel is a writing.Model backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ writing.Model = (*GeminiModel)(nil)

// NewGeminiModel returns nil, and no error, when no API key is configured.
func NewGeminiModel(ctx context.Context, conf *core.Config, opts ...option.ClientOption) (*GeminiModel, error) {
	if conf.Gemini.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(conf.Gemini.APIKey)}, opts...)...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating gemini client")
	}
	model := client.GenerativeModel(conf.Gemini.Model)
	model.SetMaxOutputTokens(maxOutputTokens)
	model.ResponseMIMEType = "application/json"
	return &GeminiModel{client: client, model: model}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", core.NewUpstreamError("generating content", err)
	}

	var answer strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				answer.WriteString(string(txt))
			}
		}
	}
	if answer.Len() == 0 {
		return "", core.NewUpstreamError("generating content", errEmptyResponse)
	}
	return answer.String(), nil
}

func (m *GeminiModel) Close() error {
	return m.client.Close()
}
