package account

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var errInvalidSealedToken = errors.New("invalid sealed token")

// sealer encrypts OAuth tokens at rest with NaCl secretbox.
type sealer struct {
	key [32]byte
}

func newSealer(secretKey string) *sealer {
	return &sealer{key: sha256.Sum256([]byte(secretKey))}
}

// seal returns base64(nonce || box). Empty strings stay empty.
func (s *sealer) seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *sealer) open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", errInvalidSealedToken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errInvalidSealedToken
	}
	return string(plain), nil
}

func (s *sealer) sealToken(t Token) (Token, error) {
	var err error
	if t.AccessToken, err = s.seal(t.AccessToken); err != nil {
		return Token{}, err
	}
	if t.RefreshToken.Valid {
		if t.RefreshToken.String, err = s.seal(t.RefreshToken.String); err != nil {
			return Token{}, err
		}
	}
	return t, nil
}

func (s *sealer) openToken(t Token) (Token, error) {
	var err error
	if t.AccessToken, err = s.open(t.AccessToken); err != nil {
		return Token{}, err
	}
	if t.RefreshToken.Valid {
		if t.RefreshToken.String, err = s.open(t.RefreshToken.String); err != nil {
			return Token{}, err
		}
	}
	return t, nil
}
