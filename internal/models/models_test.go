package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions_Allows(t *testing.T) {
	tests := []struct {
		name  string
		table Transitions
		from  Status
		to    Status
		want  bool
	}{
		{"transaction pending to completed", TransactionTransitions, StatusPending, StatusCompleted, true},
		{"transaction pending to failed", TransactionTransitions, StatusPending, StatusFailed, true},
		{"transaction completed to failed", TransactionTransitions, StatusCompleted, StatusFailed, false},
		{"transaction failed to completed", TransactionTransitions, StatusFailed, StatusCompleted, false},
		{"transaction pending to paid", TransactionTransitions, StatusPending, StatusPaid, false},
		{"charge pending to active", ChargeTransitions, StatusPending, StatusActive, true},
		{"charge active to paid", ChargeTransitions, StatusActive, StatusPaid, true},
		{"charge active to expired", ChargeTransitions, StatusActive, StatusExpired, true},
		{"charge paid to expired", ChargeTransitions, StatusPaid, StatusExpired, false},
		{"charge expired to paid", ChargeTransitions, StatusExpired, StatusPaid, false},
		{"charge active to failed", ChargeTransitions, StatusActive, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.Allows(tt.from, tt.to))
		})
	}
}

func TestTransitions_TerminalStatusesHaveNoExits(t *testing.T) {
	for _, table := range []Transitions{TransactionTransitions, ChargeTransitions} {
		for from := range table {
			assert.False(t, from.IsTerminal(), "terminal status %s must not have transitions", from)
		}
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole amount", amount: "30", want: 3000},
		{name: "two decimals", amount: "12.34", want: 1234},
		{name: "one decimal", amount: "0.5", want: 50},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-1", wantErr: true},
		{name: "three decimals", amount: "1.005", wantErr: true},
		{name: "huge exponent", amount: "1e400000000", wantErr: true},
		{name: "tiny exponent", amount: "1e-400000000", wantErr: true},
		{name: "trailing zeros", amount: "1.500", want: 150},
		{name: "above float precision", amount: "100000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := ToCents(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cents)
		})
	}
}

func TestFromCents(t *testing.T) {
	assert.Equal(t, "30.5", FromCents(3050).String())
	assert.Equal(t, "30.50", FromCents(3050).StringFixed(2))
}

func TestTransaction_SettlementDeltas(t *testing.T) {
	sender := uuid.New()
	recipient := uuid.New()

	transfer := &Transaction{Type: TransactionTypeTransfer, SenderID: &sender, RecipientID: &recipient, AmountCents: 3000}
	mint := &Transaction{Type: TransactionTypeMint, RecipientID: &recipient, AmountCents: 500}
	redeem := &Transaction{Type: TransactionTypeRedeem, SenderID: &sender, AmountCents: 700}
	payment := &Transaction{Type: TransactionTypePayment, SenderID: &sender, RecipientID: &recipient, AmountCents: 4000}

	t.Run("transfer completion conserves value", func(t *testing.T) {
		deltas := transfer.SettlementDeltas(StatusCompleted)
		require.Len(t, deltas, 2)
		assert.Equal(t, BalanceDelta{UserID: sender, Balance: -3000}, deltas[0])
		assert.Equal(t, BalanceDelta{UserID: recipient, Balance: 3000, Available: 3000}, deltas[1])
		assert.Zero(t, deltas[0].Balance+deltas[1].Balance)
	})

	t.Run("transfer failure releases hold", func(t *testing.T) {
		assert.Equal(t, []BalanceDelta{{UserID: sender, Available: 3000}}, transfer.SettlementDeltas(StatusFailed))
	})

	t.Run("mint completion credits recipient only", func(t *testing.T) {
		assert.Equal(t, []BalanceDelta{{UserID: recipient, Balance: 500, Available: 500}}, mint.SettlementDeltas(StatusCompleted))
		assert.Empty(t, mint.SettlementDeltas(StatusFailed))
	})

	t.Run("redeem completion debits sender only", func(t *testing.T) {
		assert.Equal(t, []BalanceDelta{{UserID: sender, Balance: -700}}, redeem.SettlementDeltas(StatusCompleted))
	})

	t.Run("payment credits charge owner without debiting payer", func(t *testing.T) {
		assert.Nil(t, payment.HoldDelta())
		assert.Equal(t, []BalanceDelta{{UserID: recipient, Balance: 4000, Available: 4000}}, payment.SettlementDeltas(StatusCompleted))
	})
}
