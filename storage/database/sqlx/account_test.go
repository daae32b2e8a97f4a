package sqlxrepos_test

import (
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/storage/database"
	sqlxrepos "github.com/serafinsanchez/googleclassroom-portal/storage/database/sqlx"
)

// openTestDB connects to the database named by TEST_DATABASE_URL, migrated from scratch.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db.DB, "reset"))
	require.NoError(t, database.Migrate(db.DB, "up"))
	t.Cleanup(func() {
		_ = database.Migrate(db.DB, "reset")
		_ = db.Close()
	})
	return db
}

func TestAccountRepository(t *testing.T) {
	repo := sqlxrepos.NewAccountRepository(openTestDB(t))

	created := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	acc := account.Account{
		ID:    "g-1",
		Email: "ada@school.test",
		Name:  "Ada Lovelace",
		Token: account.Token{
			AccessToken:  "sealed-access",
			RefreshToken: null.StringFrom("sealed-refresh"),
			TokenType:    "Bearer",
		},
		CreatedAt: created,
		UpdatedAt: created,
		LastLogin: null.TimeFrom(created),
	}

	saved, err := repo.UpsertAccount(acc)
	require.NoError(t, err)
	assert.Equal(t, "sealed-refresh", saved.Token.RefreshToken.String)

	// a second upsert keeps created_at
	later := created.Add(time.Hour)
	acc.Name = "Ada King"
	acc.CreatedAt = later
	acc.UpdatedAt = later
	saved, err = repo.UpsertAccount(acc)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", saved.Name)
	assert.True(t, created.Equal(saved.CreatedAt))
	assert.True(t, later.Equal(saved.UpdatedAt))

	got, err := repo.GetAccountByEmail("ada@school.test")
	require.NoError(t, err)
	assert.Equal(t, "g-1", got.ID)

	// a null refresh token keeps the stored one
	err = repo.UpdateAccountToken("g-1", account.Token{AccessToken: "sealed-access-2", TokenType: "Bearer"}, later)
	require.NoError(t, err)
	got, err = repo.GetAccount("g-1")
	require.NoError(t, err)
	assert.Equal(t, "sealed-access-2", got.Token.AccessToken)
	assert.Equal(t, "sealed-refresh", got.Token.RefreshToken.String)

	assert.ErrorIs(t, repo.UpdateAccountToken("nope", account.Token{}, later), account.ErrNotFound)

	_, err = repo.UpsertAccount(account.Account{ID: "g-2", Email: "bob@school.test", Name: "Bob", CreatedAt: later, UpdatedAt: later})
	require.NoError(t, err)

	accs, err := repo.QueryAccounts(account.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.Equal(t, "ada@school.test", accs[0].Email)

	accs, err = repo.QueryAccounts(account.QueryFilter{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "g-2", accs[0].ID)

	require.NoError(t, repo.DeleteAccount("g-2"))
	assert.ErrorIs(t, repo.DeleteAccount("g-2"), account.ErrNotFound)
	_, err = repo.GetAccount("g-2")
	assert.ErrorIs(t, err, account.ErrNotFound)
}
