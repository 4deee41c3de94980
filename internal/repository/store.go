package repository

import (
	"context"
	"database/sql"

	"github.com/benx421/lzar-wallet/internal/db"
)

// Store hands out repositories bound either to the pool or to one database
// transaction.
type Store struct {
	db *db.DB
}

// NewStore creates a Store over database
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Repositories returns repositories bound to the connection pool
func (s *Store) Repositories() Repositories {
	return New(s.db)
}

// InTx runs fn with repositories bound to a single read-committed transaction.
// The transaction commits only when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(New(tx))
	})
}
