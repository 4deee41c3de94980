package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/repository"
	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same conditional-update semantics as the
// Postgres repositories. Transactions are serialized and roll back on error.
type memStore struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]models.Wallet
	txns    map[uuid.UUID]models.Transaction
	charges map[uuid.UUID]models.Charge
}

func newMemStore(wallets ...models.Wallet) *memStore {
	s := &memStore{
		wallets: map[uuid.UUID]models.Wallet{},
		txns:    map[uuid.UUID]models.Transaction{},
		charges: map[uuid.UUID]models.Charge{},
	}
	for _, w := range wallets {
		s.wallets[w.UserID] = w
	}
	return s
}

func (s *memStore) Repositories() repository.Repositories {
	return s.bind(false)
}

func (s *memStore) InTx(_ context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallets, txns, charges := maps.Clone(s.wallets), maps.Clone(s.txns), maps.Clone(s.charges)
	if err := fn(s.bind(true)); err != nil {
		s.wallets, s.txns, s.charges = wallets, txns, charges
		return err
	}
	return nil
}

func (s *memStore) bind(inTx bool) repository.Repositories {
	r := &memRepos{s: s, inTx: inTx}
	return repository.Repositories{
		Wallets:      memWallets{r},
		Transactions: memTransactions{r},
		Charges:      memCharges{r},
	}
}

func (s *memStore) wallet(id uuid.UUID) models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[id]
}

func (s *memStore) transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.txns))
}

func (s *memStore) charge(id uuid.UUID) models.Charge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charges[id]
}

type memRepos struct {
	s    *memStore
	inTx bool
}

func (r *memRepos) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

type memWallets struct{ *memRepos }

func (r memWallets) Create(_ context.Context, w *models.Wallet) error {
	defer r.lock()()
	if _, ok := r.s.wallets[w.UserID]; ok {
		return models.ErrDuplicateTransaction
	}
	r.s.wallets[w.UserID] = *w
	return nil
}

func (r memWallets) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	defer r.lock()()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", userID, models.ErrNotFound)
	}
	return &w, nil
}

func (r memWallets) FindByIdentifier(_ context.Context, identifier string) (*models.Wallet, error) {
	defer r.lock()()
	for _, w := range r.s.wallets {
		if strings.EqualFold(w.Email, identifier) || w.Phone == identifier || w.UserID.String() == strings.ToLower(identifier) {
			return &w, nil
		}
	}
	return nil, fmt.Errorf("wallet %q: %w", identifier, models.ErrNotFound)
}

func (r memWallets) AdjustBalances(_ context.Context, userID uuid.UUID, balanceDelta, availableDelta int64) (*models.Wallet, error) {
	defer r.lock()()
	w, ok := r.s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", userID, models.ErrNotFound)
	}
	if w.BalanceCents+balanceDelta < 0 || w.AvailableBalanceCents+availableDelta < 0 {
		return nil, models.ErrInsufficientFunds
	}
	w.BalanceCents += balanceDelta
	w.AvailableBalanceCents += availableDelta
	r.s.wallets[userID] = w
	return &w, nil
}

type memTransactions struct{ *memRepos }

func (r memTransactions) Create(_ context.Context, txn *models.Transaction) error {
	defer r.lock()()
	if _, ok := r.s.txns[txn.ID]; ok {
		return models.ErrDuplicateTransaction
	}
	r.s.txns[txn.ID] = *txn
	return nil
}

func (r memTransactions) FindByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	defer r.lock()()
	txn, ok := r.s.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return &txn, nil
}

func (r memTransactions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r memTransactions) Transition(_ context.Context, txn *models.Transaction, from models.Status) error {
	defer r.lock()()
	stored, ok := r.s.txns[txn.ID]
	if !ok || stored.Status != from || !models.TransactionTransitions.Allows(from, txn.Status) {
		return models.ErrInvalidTransition
	}
	stored.Status = txn.Status
	if stored.ExternalID == nil {
		stored.ExternalID = txn.ExternalID
	}
	stored.ErrorMessage = txn.ErrorMessage
	stored.CompletedAt = txn.CompletedAt
	r.s.txns[txn.ID] = stored
	return nil
}

func (r memTransactions) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	defer r.lock()()
	var out []models.Transaction
	for _, txn := range r.s.txns {
		if txn.Involves(userID) {
			out = append(out, txn)
		}
	}
	slices.SortFunc(out, func(a, b models.Transaction) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCharges struct{ *memRepos }

func (r memCharges) Create(_ context.Context, c *models.Charge) error {
	defer r.lock()()
	if _, ok := r.s.charges[c.ID]; ok {
		return models.ErrDuplicateTransaction
	}
	r.s.charges[c.ID] = *c
	return nil
}

func (r memCharges) FindByID(_ context.Context, id uuid.UUID) (*models.Charge, error) {
	defer r.lock()()
	c, ok := r.s.charges[id]
	if !ok {
		return nil, fmt.Errorf("charge %s: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (r memCharges) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Charge, error) {
	return r.FindByID(ctx, id)
}

func (r memCharges) Transition(_ context.Context, c *models.Charge, from models.Status) error {
	defer r.lock()()
	stored, ok := r.s.charges[c.ID]
	if !ok || stored.Status != from || !models.ChargeTransitions.Allows(from, c.Status) {
		return models.ErrInvalidTransition
	}
	stored.Status = c.Status
	if stored.ExternalID == nil {
		stored.ExternalID = c.ExternalID
	}
	stored.PayerID = c.PayerID
	stored.PaidAt = c.PaidAt
	r.s.charges[c.ID] = stored
	return nil
}

func (r memCharges) ExpireDue(_ context.Context, now time.Time, limit int) ([]models.Charge, error) {
	defer r.lock()()
	var out []models.Charge
	for id, c := range r.s.charges {
		if len(out) == limit {
			break
		}
		if (c.Status == models.StatusPending || c.Status == models.StatusActive) && !c.ExpiresAt.After(now) {
			c.Status = models.StatusExpired
			r.s.charges[id] = c
			out = append(out, c)
		}
	}
	return out, nil
}
