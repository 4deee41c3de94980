package service

import (
	"context"

	"github.com/benx421/lzar-wallet/internal/gateway"
	"github.com/benx421/lzar-wallet/internal/models"
)

// Transfer moves funds from the sender to the wallet matching req.Recipient (an
// email, phone number or user id)
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error) {
	cents, err := ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	identifier, err := ValidateRecipient(req.Recipient)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repositories()

	sender, err := s.findWallet(ctx, repos.Wallets, req.SenderID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.findRecipient(ctx, repos.Wallets, identifier)
	if err != nil {
		return nil, err
	}
	if recipient.UserID == sender.UserID {
		return nil, &ServiceError{
			Code:    ErrCodeRecipientNotFound,
			Message: "cannot transfer to your own wallet",
		}
	}

	if sender.AvailableBalanceCents < cents {
		return nil, &ServiceError{
			Code:    ErrCodeInsufficientBalance,
			Message: "insufficient balance",
		}
	}

	txn := newTransaction(models.TransactionTypeTransfer, cents, &sender.UserID, &recipient.UserID, req.Description, s.now())
	if err := s.open(ctx, txn); err != nil {
		return nil, err
	}

	return s.execute(ctx, txn, gateway.KindTransfer, gateway.Payload{
		Amount:      models.FromCents(cents),
		From:        sender.UserID.String(),
		To:          recipient.UserID.String(),
		Description: req.Description,
	})
}
