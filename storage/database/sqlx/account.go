package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

const accountColumns = `id, email, name, picture, access_token, refresh_token, token_type, token_expiry,
	created_at, updated_at, last_login`

// accountRow maps a row of the account table.
type accountRow struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	Name         string      `db:"name"`
	Picture      null.String `db:"picture"`
	AccessToken  string      `db:"access_token"`
	RefreshToken null.String `db:"refresh_token"`
	TokenType    string      `db:"token_type"`
	TokenExpiry  null.Time   `db:"token_expiry"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func newAccountRow(acc account.Account) accountRow {
	return accountRow{
		ID:           acc.ID,
		Email:        acc.Email,
		Name:         acc.Name,
		Picture:      acc.Picture,
		AccessToken:  acc.Token.AccessToken,
		RefreshToken: acc.Token.RefreshToken,
		TokenType:    acc.Token.TokenType,
		TokenExpiry:  acc.Token.Expiry,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
		LastLogin:    acc.LastLogin,
	}
}

func (r accountRow) account() account.Account {
	return account.Account{
		ID:      r.ID,
		Email:   r.Email,
		Name:    r.Name,
		Picture: r.Picture,
		Token: account.Token{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
			TokenType:    r.TokenType,
			Expiry:       r.TokenExpiry,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		LastLogin: r.LastLogin,
	}
}

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) getOne(query string, args ...interface{}) (account.Account, error) {
	var row accountRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "selecting account")
	}
	return row.account(), nil
}

func (repo *accountRepository) GetAccount(id string) (account.Account, error) {
	return repo.getOne(`SELECT `+accountColumns+` FROM account WHERE id = $1`, id)
}

func (repo *accountRepository) GetAccountByEmail(email string) (account.Account, error) {
	return repo.getOne(`SELECT `+accountColumns+` FROM account WHERE email = $1`, email)
}

func (repo *accountRepository) UpsertAccount(acc account.Account) (account.Account, error) {
	const q = `INSERT INTO account (` + accountColumns + `)
		VALUES (:id, :email, :name, :picture, :access_token, :refresh_token, :token_type, :token_expiry,
			:created_at, :updated_at, :last_login)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = EXCLUDED.updated_at,
			last_login = EXCLUDED.last_login
		RETURNING ` + accountColumns

	stmt, err := repo.db.PrepareNamed(q)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "preparing account upsert")
	}
	defer func() { _ = stmt.Close() }()

	var row accountRow
	if err := stmt.Get(&row, newAccountRow(acc)); err != nil {
		return account.Account{}, errors.Wrap(err, "upserting account")
	}
	return row.account(), nil
}

func (repo *accountRepository) UpdateAccountToken(id string, tok account.Token, updatedAt time.Time) error {
	const q = `UPDATE account SET
			access_token = $2,
			refresh_token = COALESCE($3, refresh_token),
			token_type = $4,
			token_expiry = $5,
			updated_at = $6
		WHERE id = $1`

	res, err := repo.db.Exec(q, id, tok.AccessToken, tok.RefreshToken, tok.TokenType, tok.Expiry, updatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "updating account token")
	}
	return expectOneRow(res)
}

func (repo *accountRepository) QueryAccounts(filter account.QueryFilter) ([]account.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM account`
	var args []interface{}
	if filter.Search != "" {
		q += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+filter.Search+"%")
	}
	q += ` ORDER BY email`

	var rows []accountRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting accounts")
	}
	accs := make([]account.Account, len(rows))
	for i, row := range rows {
		accs[i] = row.account()
	}
	return accs, nil
}

func (repo *accountRepository) DeleteAccount(id string) error {
	res, err := repo.db.Exec(`DELETE FROM account WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}
