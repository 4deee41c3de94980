package db

import _ "embed"

// InitSchema creates the wallet, ledger and idempotency tables.
//
//go:embed migrations/000001_init.up.sql
var InitSchema string
