// Package googlesvc connects the dashboard to Google: sign-in, Classroom, Drive and Docs.
package googlesvc

import (
	"context"
	"errors"

	verifier "github.com/futurenda/google-auth-id-token-verifier"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	classroomapi "google.golang.org/api/classroom/v1"
	driveapi "google.golang.org/api/drive/v3"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

// Scopes requested at sign-in.
var Scopes = []string{
	"openid",
	"profile",
	"email",
	classroomapi.ClassroomCoursesReadonlyScope,
	classroomapi.ClassroomRostersReadonlyScope,
	classroomapi.ClassroomCourseworkStudentsScope,
	classroomapi.ClassroomCourseworkMeScope,
	classroomapi.ClassroomAnnouncementsScope,
	classroomapi.ClassroomTopicsReadonlyScope,
	classroomapi.ClassroomProfileEmailsScope,
	classroomapi.ClassroomProfilePhotosScope,
	driveapi.DriveReadonlyScope,
}

var errNoIDToken = errors.New("no id_token in token response")

func NewOAuthConfig(conf *core.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     conf.Google.ClientID,
		ClientSecret: conf.Google.ClientSecret,
		RedirectURL:  conf.Google.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

// IdentityProvider runs the Google OAuth authorization code flow.
type IdentityProvider struct {
	conf     *oauth2.Config
	verifier *verifier.Verifier
}

func NewIdentityProvider(conf *oauth2.Config) *IdentityProvider {
	return &IdentityProvider{conf: conf, verifier: &verifier.Verifier{}}
}

func (p *IdentityProvider) Config() *oauth2.Config {
	return p.conf
}

// AuthCodeURL returns the consent page URL. Consent is always prompted so Google sends a refresh token.
func (p *IdentityProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and returns the verified identity of its owner.
func (p *IdentityProvider) Exchange(ctx context.Context, code string) (account.Profile, *oauth2.Token, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return account.Profile{}, nil, core.NewUpstreamError("exchanging authorization code", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return account.Profile{}, nil, errNoIDToken
	}
	if err = p.verifier.VerifyIDToken(idToken, []string{p.conf.ClientID}); err != nil {
		return account.Profile{}, nil, pkgerrors.Wrap(err, "verifying id token")
	}
	claims, err := verifier.Decode(idToken)
	if err != nil {
		return account.Profile{}, nil, pkgerrors.Wrap(err, "decoding id token")
	}

	return account.Profile{ID: claims.Sub, Email: claims.Email, Name: claims.Name}, tok, nil
}
