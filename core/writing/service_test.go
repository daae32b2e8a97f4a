package writing_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
	"github.com/serafinsanchez/googleclassroom-portal/tests"
)

type fakeModel struct {
	answer  string
	err     error
	prompts []string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

const validAnswer = `Here is your adventure report!
{
  "writerLevel": 6,
  "xpGained": 640,
  "writingPowers": [{"name": "Story Weaver's Grace", "level": 4, "description": "Vivid scenes", "examples": ["the sky wept"]}],
  "questProgress": {"mainQuest": "Narrative essay", "progress": 70, "achievements": ["Imagery Initiate"]},
  "magicalElements": {"spells": [{"name": "Personification", "power": "Adept", "example": "the sky wept"}]},
  "nextQuests": [{"title": "Comma Crusade", "reward": "100 XP", "hint": "Read it aloud"}]
}
Keep writing!`

func newService(model writing.Model) *writing.Service {
	validate, _ := testutil.NewValidator()
	return writing.NewService(model, validate, &testutil.Logger{})
}

func TestService_Analyze(t *testing.T) {
	model := &fakeModel{answer: validAnswer}
	svc := newService(model)

	analysis, err := svc.Analyze(context.Background(), writing.AnalyzeRequest{Text: "  The sky wept over the village.  "})
	require.NoError(t, err)
	assert.Equal(t, 6, analysis.WriterLevel)
	assert.Equal(t, 640, analysis.XPGained)
	require.Len(t, analysis.WritingPowers, 1)
	assert.Equal(t, "Story Weaver's Grace", analysis.WritingPowers[0].Name)
	assert.Equal(t, 70.0, analysis.QuestProgress.Progress)
	assert.Equal(t, "Adept", analysis.MagicalElements.Spells[0].Power)
	assert.Equal(t, "Comma Crusade", analysis.NextQuests[0].Title)

	require.Len(t, model.prompts, 1)
	assert.True(t, strings.HasSuffix(model.prompts[0], "Writing sample to analyze:\nThe sky wept over the village."))
}

func TestService_Analyze_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "blank", text: " \n\t "},
		{name: "too long", text: strings.Repeat("a", 50001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{answer: validAnswer}
			_, err := newService(model).Analyze(context.Background(), writing.AnalyzeRequest{Text: tt.text})

			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
			assert.Empty(t, model.prompts)
		})
	}
}

func TestService_Analyze_InvalidResponse(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantErr error
	}{
		{name: "no JSON", answer: "I cannot help with that.", wantErr: writing.ErrNoJSON},
		{name: "malformed JSON", answer: `{"writerLevel": 6, "xpGained": }`},
		{name: "missing writer level", answer: `{"xpGained": 300, "writingPowers": [{"name": "Voice"}]}`},
		{name: "missing powers", answer: `{"writerLevel": 3, "xpGained": 300, "writingPowers": []}`},
		{name: "unnamed power", answer: `{"writerLevel": 3, "xpGained": 300, "writingPowers": [{"level": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(&fakeModel{answer: tt.answer}).Analyze(context.Background(), writing.AnalyzeRequest{Text: "Some text"})

			var respErr *writing.InvalidResponseError
			require.True(t, errors.As(err, &respErr), "want *InvalidResponseError, got %v", err)
			assert.NotEmpty(t, respErr.Raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestService_Analyze_ModelFailure(t *testing.T) {
	errUpstream := errors.New("quota exceeded")
	_, err := newService(&fakeModel{err: errUpstream}).Analyze(context.Background(), writing.AnalyzeRequest{Text: "Some text"})
	assert.ErrorIs(t, err, errUpstream)

	_, err = newService(nil).Analyze(context.Background(), writing.AnalyzeRequest{Text: "Some text"})
	assert.Equal(t, writing.ErrModelUnavailable, err)
}
