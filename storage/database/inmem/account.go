package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) query() []account.Account {
	accs := make([]account.Account, 0, len(repo.db.table))
	for _, acc := range repo.db.table {
		accs = append(accs, *acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].Email < accs[j].Email })
	return accs
}

func (repo *accountRepository) GetAccount(id string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acc, ok := repo.db.table[id]; ok {
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(email string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acc := range repo.db.table {
		if acc.Email == email {
			return *acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpsertAccount(acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[acc.ID]; ok {
		acc.CreatedAt = orig.CreatedAt
	}
	repo.db.table[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) UpdateAccountToken(id string, tok account.Token, updatedAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc, ok := repo.db.table[id]
	if !ok {
		return account.ErrNotFound
	}
	if !tok.RefreshToken.Valid {
		tok.RefreshToken = acc.Token.RefreshToken
	}
	acc.Token = tok
	acc.UpdatedAt = updatedAt
	return nil
}

func (repo *accountRepository) QueryAccounts(filter account.QueryFilter) ([]account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	accs := repo.query()
	if filter.Search == "" {
		return accs, nil
	}
	search := strings.ToLower(filter.Search)
	matches := make([]account.Account, 0, len(accs))
	for _, acc := range accs {
		if strings.Contains(strings.ToLower(acc.Name), search) || strings.Contains(strings.ToLower(acc.Email), search) {
			matches = append(matches, acc)
		}
	}
	return matches, nil
}

func (repo *accountRepository) DeleteAccount(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return account.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
