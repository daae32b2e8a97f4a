// Package writing reviews student writing with a generative language model.
package writing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

var (
	ErrNoJSON           = errors.New("no JSON found in model response")
	ErrModelUnavailable = errors.New("writing analysis is not configured")

	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// Model generates a text completion for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	model    Model
	validate *validator.Validate
	logger   core.Logger
}

func NewService(model Model, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{model: model, validate: validate, logger: logger}
}

func (req *AnalyzeRequest) Validate(validate *validator.Validate) error {
	req.Text = core.CleanString(req.Text)
	return validate.Struct(req)
}

// Analyze asks the model to review req.Text and decodes the JSON object found in its answer.
func (svc *Service) Analyze(ctx context.Context, req AnalyzeRequest) (Analysis, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Analysis{}, err
	}
	if svc.model == nil {
		return Analysis{}, ErrModelUnavailable
	}

	var prompt strings.Builder
	if err := promptTmpl.Execute(&prompt, req); err != nil {
		return Analysis{}, pkgerrors.Wrap(err, "rendering prompt")
	}

	answer, err := svc.model.Generate(ctx, prompt.String())
	if err != nil {
		return Analysis{}, pkgerrors.Wrap(err, "generating analysis")
	}
	return svc.parse(answer)
}

// InvalidResponseError is returned when the model answer holds no usable analysis.
// Raw is the beginning of the answer.
type InvalidResponseError struct {
	Raw string
	Err error
}

func (err *InvalidResponseError) Error() string {
	return "invalid model response: " + err.Err.Error()
}

func (err *InvalidResponseError) Unwrap() error { return err.Err }

func (svc *Service) parse(answer string) (Analysis, error) {
	raw := jsonObjectRe.FindString(answer)
	if raw == "" {
		svc.logger.Warn(fmt.Sprintf("no JSON in model response: %q", truncate(answer, 500)))
		return Analysis{}, &InvalidResponseError{Raw: truncate(answer, 2000), Err: ErrNoJSON}
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		svc.logger.Warn(fmt.Sprintf("malformed JSON in model response: %q", truncate(raw, 500)), err)
		return Analysis{}, &InvalidResponseError{Raw: truncate(raw, 2000), Err: pkgerrors.Wrap(err, "decoding analysis")}
	}
	if err := svc.validate.Struct(analysis); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalid analysis structure: %v", err))
		return Analysis{}, &InvalidResponseError{Raw: truncate(raw, 2000), Err: pkgerrors.Wrap(err, "missing required fields")}
	}
	return analysis, nil
}

// truncate cuts s to at most n bytes, on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
