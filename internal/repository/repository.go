// Package repository provides data access layer implementations for the wallet service.
package repository

import (
	"database/sql"
	"errors"

	"github.com/benx421/lzar-wallet/internal/db"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Repositories groups the repositories bound to one connection or transaction
type Repositories struct {
	Wallets      WalletRepository
	Transactions TransactionRepository
	Charges      ChargeRepository
}

// New binds every repository to conn.
func New(conn db.DBTX) Repositories {
	return Repositories{
		Wallets:      NewWalletRepository(conn),
		Transactions: NewTransactionRepository(conn),
		Charges:      NewChargeRepository(conn),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
