package llmsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

func TestNewGeminiModel_NoAPIKey(t *testing.T) {
	model, err := NewGeminiModel(context.Background(), &core.Config{})
	assert.NoError(t, err)
	assert.Nil(t, model)
}
