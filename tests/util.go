// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

// CreateAccount signs an account in through svc, as the OAuth callback does.
func CreateAccount(t *testing.T, svc *account.Service, id, name, email string) account.Account {
	tok := &oauth2.Token{
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	acc, err := svc.Login(account.Profile{ID: id, Name: name, Email: email}, tok)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}
