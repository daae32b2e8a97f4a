package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})

	acc := account.Account{ID: "g-1", Name: "Ada", Email: "ada@school.test", Token: account.Token{AccessToken: "secret-token"}}
	logger.Warn("listing courses failed", errors.New("boom"), acc, map[string]interface{}{"course": "c1"})

	out := buf.String()
	assert.Contains(t, out, "listing courses failed\n")
	assert.Contains(t, out, "boom\n")
	assert.Contains(t, out, "map[course:c1]\n")
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "ada@school.test")
}
