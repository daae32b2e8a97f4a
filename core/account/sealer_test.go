package account

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestSealer(t *testing.T) {
	s := newSealer("secret")

	sealed, err := s.seal("ya29.access")
	require.NoError(t, err)
	assert.NotEqual(t, "ya29.access", sealed)

	again, err := s.seal("ya29.access")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces must differ")

	plain, err := s.open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", plain)

	box, _ := base64.RawURLEncoding.DecodeString(sealed)
	box[len(box)-1] ^= 0xff
	tampered := base64.RawURLEncoding.EncodeToString(box)

	tests := []struct {
		name   string
		sealer *sealer
		sealed string
	}{
		{name: "wrong key", sealer: newSealer("other"), sealed: sealed},
		{name: "not base64", sealer: s, sealed: "%%%"},
		{name: "too short", sealer: s, sealed: "c2hvcnQ"},
		{name: "tampered", sealer: s, sealed: tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sealer.open(tt.sealed)
			assert.Equal(t, errInvalidSealedToken, err)
		})
	}

	t.Run("empty", func(t *testing.T) {
		sealed, err := s.seal("")
		require.NoError(t, err)
		assert.Empty(t, sealed)
		plain, err := s.open("")
		require.NoError(t, err)
		assert.Empty(t, plain)
	})
}

func TestSealer_Token(t *testing.T) {
	s := newSealer("secret")
	tok := Token{AccessToken: "access", RefreshToken: null.StringFrom("refresh"), TokenType: "Bearer"}

	sealed, err := s.sealToken(tok)
	require.NoError(t, err)
	assert.NotEqual(t, "access", sealed.AccessToken)
	assert.NotEqual(t, "refresh", sealed.RefreshToken.String)
	assert.Equal(t, "Bearer", sealed.TokenType)

	opened, err := s.openToken(sealed)
	require.NoError(t, err)
	assert.Equal(t, tok, opened)

	sealed, err = s.sealToken(Token{AccessToken: "access"})
	require.NoError(t, err)
	assert.False(t, sealed.RefreshToken.Valid)
}
