package qr

import "github.com/shopspring/decimal"

// Action tells the scanning client which flow a scanned code starts
type Action string

const (
	ActionConfirmPayment Action = "confirm_payment"
	ActionSendMoney      Action = "send_money"
	ActionUnsupported    Action = "unsupported"
)

// PaymentHandoff seeds the payment-confirmation flow
type PaymentHandoff struct {
	Amount       decimal.Decimal `json:"amount"`
	ChargeID     string          `json:"charge_id"`
	Description  string          `json:"description,omitempty"`
	MerchantName string          `json:"merchant_name"`
}

// RecipientHandoff seeds the send-money flow
type RecipientHandoff struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Dispatch is the outcome of routing one scanned payload.
type Dispatch struct {
	Payment   *PaymentHandoff   `json:"payment,omitempty"`
	Recipient *RecipientHandoff `json:"recipient,omitempty"`
	Action    Action            `json:"action"`
	Reason    string            `json:"reason,omitempty"`
}

// Actionable reports whether the dispatch starts a flow.
func (d Dispatch) Actionable() bool {
	return d.Action != ActionUnsupported
}

// Route decodes payload and selects the flow it starts. Receipts and every decode
// failure are unsupported.
func Route(payload string) Dispatch {
	intent, err := Decode(payload)
	if err != nil {
		return Dispatch{Action: ActionUnsupported, Reason: err.Error()}
	}

	switch v := intent.(type) {
	case PaymentRequest:
		return Dispatch{
			Action: ActionConfirmPayment,
			Payment: &PaymentHandoff{
				ChargeID:     v.ChargeID,
				Amount:       v.Amount,
				Description:  v.Description,
				MerchantName: v.MerchantName,
			},
		}
	case UserProfile:
		return Dispatch{
			Action: ActionSendMoney,
			Recipient: &RecipientHandoff{
				UserID:   v.UserID,
				UserName: v.UserName,
			},
		}
	default:
		return Dispatch{Action: ActionUnsupported, Reason: "this QR code is not supported"}
	}
}
