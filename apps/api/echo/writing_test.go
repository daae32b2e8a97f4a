package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
)

const analysisAnswer = `Here is the analysis:
{
  "writerLevel": 4,
  "xpGained": 120,
  "writingPowers": [{"name": "Vivid Imagery", "level": 3, "description": "Paints pictures", "examples": ["golden sun"]}],
  "questProgress": {"mainQuest": "Master Storyteller", "progress": 40, "achievements": ["First Draft"]},
  "magicalElements": {"spells": [{"name": "Metaphor", "power": "Transforms", "example": "a sea of stars"}]},
  "nextQuests": [{"title": "Dialogue Duel", "reward": "50 XP", "hint": "Let characters talk"}]
}
Keep writing!`

func TestWritingApi_Analyze(t *testing.T) {
	t.Run("analysis", func(t *testing.T) {
		f := setup(t, true)
		f.model.answer = analysisAnswer

		req, rec := newAuthRequest(http.MethodPost, "/api/analyze-writing", f.token, []byte(`{"text": "The golden sun rose."}`))
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var analysis writing.Analysis
		require.NoError(t, jsonUnmarshal(rec, &analysis))
		assert.Equal(t, 4, analysis.WriterLevel)
		assert.Equal(t, 120, analysis.XPGained)
		require.Len(t, analysis.WritingPowers, 1)
		assert.Equal(t, "Vivid Imagery", analysis.WritingPowers[0].Name)
		assert.Equal(t, 1, f.model.calls)
	})

	t.Run("no text", func(t *testing.T) {
		f := setup(t, true)

		req, rec := newAuthRequest(http.MethodPost, "/api/analyze-writing", f.token, []byte(`{"text": "  "}`))
		f.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"text": "this field is required"}`)}, rec)
		assert.Zero(t, f.model.calls)
	})

	t.Run("unparsable answer", func(t *testing.T) {
		f := setup(t, true)
		f.model.answer = "I cannot review this text."

		req, rec := newAuthRequest(http.MethodPost, "/api/analyze-writing", f.token, []byte(`{"text": "The golden sun rose."}`))
		f.serve(req, rec)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeMap(t, rec)
		assert.Equal(t, "Failed to parse analysis result", body["error"])
		assert.Equal(t, writing.ErrNoJSON.Error(), body["details"])
		assert.Equal(t, "I cannot review this text.", body["rawResponse"])
	})

	t.Run("incomplete answer", func(t *testing.T) {
		f := setup(t, true)
		f.model.answer = `{"writerLevel": 4}`

		req, rec := newAuthRequest(http.MethodPost, "/api/analyze-writing", f.token, []byte(`{"text": "The golden sun rose."}`))
		f.serve(req, rec)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, `{"writerLevel": 4}`, decodeMap(t, rec)["rawResponse"])
	})

	t.Run("model not configured", func(t *testing.T) {
		f := setup(t, false)

		req, rec := newAuthRequest(http.MethodPost, "/api/analyze-writing", f.token, []byte(`{"text": "The golden sun rose."}`))
		f.serve(req, rec)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusServiceUnavailable,
			wantData: marchallObj(t, httpErr{Error: writing.ErrModelUnavailable.Error()}),
		}, rec)
	})
}
