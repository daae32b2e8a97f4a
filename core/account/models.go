package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/oauth2"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

// Token is the Google OAuth token of an Account.
// Repositories only ever see it sealed.
type Token struct {
	AccessToken  string
	RefreshToken null.String
	TokenType    string
	Expiry       null.Time
}

func newToken(tok *oauth2.Token) Token {
	t := Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}
	if tok.RefreshToken != "" {
		t.RefreshToken = null.StringFrom(tok.RefreshToken)
	}
	if !tok.Expiry.IsZero() {
		t.Expiry = null.TimeFrom(tok.Expiry.UTC())
	}
	return t
}

// OAuth2 returns the token in the shape expected by golang.org/x/oauth2.
func (t Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken.String,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry.Time,
	}
}

// Account is a teacher who signed in with Google. ID is the Google subject.
type Account struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Picture   null.String `json:"picture"`
	Token     Token       `json:"-"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
	LastLogin null.Time   `json:"last_login"` // UTC
}

// Profile is the identity asserted by a verified Google ID token.
type Profile struct {
	ID      string `validate:"required"`
	Email   string `validate:"required,email"`
	Name    string
	Picture string `validate:"omitempty,url"`
}

func (p *Profile) Validate(validate *validator.Validate) error {
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Name = core.CleanString(p.Name)
	return validate.Struct(p)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}
