package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/oauth2"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

var ErrNotFound = errors.New("account not found")

var nowFunc = time.Now

type (
	// Repository persists accounts. Tokens it receives and returns are sealed.
	Repository interface {
		GetAccount(id string) (Account, error)
		GetAccountByEmail(email string) (Account, error)
		// UpsertAccount inserts the account or replaces every field of the existing one but CreatedAt.
		UpsertAccount(acc Account) (Account, error)
		// UpdateAccountToken replaces the token of an account. A null RefreshToken keeps the stored one.
		UpdateAccountToken(id string, tok Token, updatedAt time.Time) error
		// QueryAccounts returns the accounts, ordered by email.
		// QueryFilter.Search does a case-insensitive match on Account.Name or Account.Email.
		QueryAccounts(filter QueryFilter) ([]Account, error)
		DeleteAccount(id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		sealer   *sealer
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, secretKey string) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		sealer:   newSealer(secretKey),
	}
}

func (svc *Service) open(acc Account) (Account, error) {
	tok, err := svc.sealer.openToken(acc.Token)
	if err != nil {
		return Account{}, pkgerrors.Wrapf(err, "opening token of account %s", acc.ID)
	}
	acc.Token = tok
	return acc, nil
}

// Login creates or updates the account of a signed in teacher and stores their Google token.
// Google only sends a refresh token on first consent: an empty one keeps the stored refresh token.
func (svc *Service) Login(p Profile, tok *oauth2.Token) (Account, error) {
	if err := p.Validate(svc.validate); err != nil {
		return Account{}, err
	}
	if tok == nil || tok.AccessToken == "" {
		return Account{}, errors.New("missing access token")
	}

	now := nowFunc().UTC()
	acc, err := svc.repo.GetAccount(p.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		acc = Account{ID: p.ID, CreatedAt: now}
	case err != nil:
		return Account{}, pkgerrors.Wrap(err, "getting account")
	}

	sealed, err := svc.sealer.sealToken(newToken(tok))
	if err != nil {
		return Account{}, pkgerrors.Wrap(err, "sealing token")
	}
	if !sealed.RefreshToken.Valid {
		sealed.RefreshToken = acc.Token.RefreshToken
	}

	acc.Email = p.Email
	acc.Name = p.Name
	acc.Picture = null.NewString(p.Picture, p.Picture != "")
	acc.Token = sealed
	acc.UpdatedAt = now
	acc.LastLogin = null.TimeFrom(now)

	saved, err := svc.repo.UpsertAccount(acc)
	if err != nil {
		return Account{}, pkgerrors.Wrap(err, "saving account")
	}
	return svc.open(saved)
}

func (svc *Service) Get(id string) (Account, error) {
	acc, err := svc.repo.GetAccount(id)
	if err != nil {
		return Account{}, err
	}
	return svc.open(acc)
}

func (svc *Service) GetByEmail(email string) (Account, error) {
	acc, err := svc.repo.GetAccountByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return Account{}, err
	}
	return svc.open(acc)
}

// Query returns the matching accounts, without their tokens.
func (svc *Service) Query(filter QueryFilter) ([]Account, error) {
	filter.Clean()
	accs, err := svc.repo.QueryAccounts(filter)
	if err != nil {
		return nil, err
	}
	for i := range accs {
		accs[i].Token = Token{}
	}
	return accs, nil
}

// Revoke deletes the account registered with email, and the Google token stored with it.
func (svc *Service) Revoke(email string) error {
	acc, err := svc.repo.GetAccountByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	return svc.repo.DeleteAccount(acc.ID)
}

func (svc *Service) saveToken(id string, tok *oauth2.Token) error {
	sealed, err := svc.sealer.sealToken(newToken(tok))
	if err != nil {
		return pkgerrors.Wrap(err, "sealing token")
	}
	return svc.repo.UpdateAccountToken(id, sealed, nowFunc().UTC())
}

// TokenSource returns a token source for the account's Google token.
// Refreshed tokens are stored back on the account.
func (svc *Service) TokenSource(ctx context.Context, acc Account, conf *oauth2.Config) oauth2.TokenSource {
	return &persistingTokenSource{
		svc:   svc,
		accID: acc.ID,
		base:  conf.TokenSource(ctx, acc.Token.OAuth2()),
		last:  acc.Token.AccessToken,
	}
}

type persistingTokenSource struct {
	svc   *Service
	accID string
	base  oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (ts *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.base.Token()
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if tok.AccessToken != ts.last {
		if err := ts.svc.saveToken(ts.accID, tok); err != nil {
			// the fresh token is still usable for this request
			ts.svc.logger.Error(fmt.Sprintf("storing refreshed token of account %s: %v", ts.accID, err), err)
		} else {
			ts.last = tok.AccessToken
		}
	}
	return tok, nil
}

// RotateSecretKey re-seals every stored token under newSecretKey, then uses it for the tokens to come.
// It returns the number of accounts re-sealed. On error, the accounts before the failing one are
// already sealed under the new key.
func (svc *Service) RotateSecretKey(newSecretKey string) (int, error) {
	if newSecretKey == "" {
		return 0, errors.New("empty secret key")
	}
	accs, err := svc.repo.QueryAccounts(QueryFilter{})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "querying accounts")
	}

	next := newSealer(newSecretKey)
	for i, acc := range accs {
		tok, err := svc.sealer.openToken(acc.Token)
		if err != nil {
			return i, pkgerrors.Wrapf(err, "opening token of account %s", acc.ID)
		}
		sealed, err := next.sealToken(tok)
		if err != nil {
			return i, pkgerrors.Wrapf(err, "sealing token of account %s", acc.ID)
		}
		if err = svc.repo.UpdateAccountToken(acc.ID, sealed, nowFunc().UTC()); err != nil {
			return i, pkgerrors.Wrapf(err, "updating token of account %s", acc.ID)
		}
	}
	svc.sealer = next
	return len(accs), nil
}
