package service

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/models"
)

// Redeem withdraws funds from the user's wallet. The balance is checked before
// any record is written.
func (s *LedgerService) Redeem(ctx context.Context, req RedeemRequest) (*models.Transaction, error) {
	cents, err := ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	wallet, err := s.findWallet(ctx, s.store.Repositories().Wallets, req.UserID)
	if err != nil {
		return nil, err
	}

	if wallet.AvailableBalanceCents < cents {
		return nil, &ServiceError{
			Code:    ErrCodeInsufficientBalance,
			Message: "insufficient balance",
		}
	}

	txn := newTransaction(models.TransactionTypeRedeem, cents, &wallet.UserID, nil, "", s.now())
	if err := s.open(ctx, txn); err != nil {
		return nil, err
	}

	return s.execute(ctx, txn, gateway.KindRedeem, gateway.Payload{
		Amount: models.FromCents(cents),
		From:   wallet.UserID.String(),
	})
}
