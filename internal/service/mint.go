package service

import (
	"context"
	"strings"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/models"
)

// Mint issues new funds. The recipient defaults to the acting user; only the
// recipient's balance changes.
func (s *LedgerService) Mint(ctx context.Context, req MintRequest) (*models.Transaction, error) {
	cents, err := ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repositories()

	var recipient *models.Wallet
	if identifier := strings.TrimSpace(req.Recipient); identifier != "" {
		recipient, err = s.findRecipient(ctx, repos.Wallets, identifier)
	} else {
		recipient, err = s.findWallet(ctx, repos.Wallets, req.ActorID)
	}
	if err != nil {
		return nil, err
	}

	txn := newTransaction(models.TransactionTypeMint, cents, nil, &recipient.UserID, req.Description, s.now())
	if err := s.open(ctx, txn); err != nil {
		return nil, err
	}

	return s.execute(ctx, txn, gateway.KindMint, gateway.Payload{
		Amount:      models.FromCents(cents),
		To:          recipient.UserID.String(),
		Description: req.Description,
	})
}
