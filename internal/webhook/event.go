package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EventType is the discriminator of a settlement notification
type EventType string

const (
	EventTransactionCompleted EventType = "transaction.completed"
	EventTransactionFailed    EventType = "transaction.failed"
	EventChargePaid           EventType = "charge.paid"
	EventChargeExpired        EventType = "charge.expired"
)

// ErrMalformedEvent is returned for bodies that are not a well-formed event.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is one of TransactionCompleted, TransactionFailed, ChargePaid, ChargeExpired
// or Unknown.
type Event interface {
	EventType() EventType
}

// TransactionCompleted reports that the gateway settled a transaction
type TransactionCompleted struct {
	TransactionID string
	Reference     uuid.UUID
}

// TransactionFailed reports that the gateway rejected a transaction
type TransactionFailed struct {
	TransactionID string
	ErrorMessage  string
	Reference     uuid.UUID
}

// ChargePaid reports that a payer settled a charge
type ChargePaid struct {
	ChargeID  string
	Reference uuid.UUID
	PayerID   uuid.UUID
}

// ChargeExpired reports that the gateway expired a charge
type ChargeExpired struct {
	Reference uuid.UUID
}

// Unknown is an event type this service does not handle
type Unknown struct {
	Type EventType
}

func (TransactionCompleted) EventType() EventType { return EventTransactionCompleted }
func (TransactionFailed) EventType() EventType    { return EventTransactionFailed }
func (ChargePaid) EventType() EventType           { return EventChargePaid }
func (ChargeExpired) EventType() EventType        { return EventChargeExpired }
func (u Unknown) EventType() EventType            { return u.Type }

type envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

type eventData struct {
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
	ErrorMessage  string `json:"error_message"`
	ChargeID      string `json:"charge_id"`
	PayerID       string `json:"payer_id"`
}

// Parse decodes a verified body. Unknown fields are ignored; missing required
// fields yield ErrMalformedEvent.
func Parse(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch env.Type {
	case EventTransactionCompleted, EventTransactionFailed, EventChargePaid, EventChargeExpired:
	default:
		return Unknown{Type: env.Type}, nil
	}

	var data eventData
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil {
		return nil, fmt.Errorf("%w: data must be an object", ErrMalformedEvent)
	}

	reference, err := uuid.Parse(data.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid reference %q", ErrMalformedEvent, data.Reference)
	}

	switch env.Type {
	case EventTransactionCompleted:
		return TransactionCompleted{Reference: reference, TransactionID: data.TransactionID}, nil
	case EventTransactionFailed:
		return TransactionFailed{
			Reference:     reference,
			TransactionID: data.TransactionID,
			ErrorMessage:  data.ErrorMessage,
		}, nil
	case EventChargePaid:
		payer, err := uuid.Parse(data.PayerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid payer_id %q", ErrMalformedEvent, data.PayerID)
		}
		return ChargePaid{Reference: reference, ChargeID: data.ChargeID, PayerID: payer}, nil
	default:
		return ChargeExpired{Reference: reference}, nil
	}
}
