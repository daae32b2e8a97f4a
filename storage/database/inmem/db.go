// Package inmemdb holds repositories backed by process memory, used in tests and when no database is configured.
package inmemdb

import (
	"sync"

	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

type (
	DB struct {
		account *accountTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}
)

func Open() *DB {
	return &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
	}
}
