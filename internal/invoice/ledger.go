package invoice

import (
	"errors"
	"time"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNonPositiveAmount rejects zero and negative payment amounts at entry.
var ErrNonPositiveAmount = errors.New("payment amount must be greater than zero")

var supportedMethods = map[string]bool{
	model.MethodBankTransfer: true,
	model.MethodCash:         true,
	model.MethodCard:         true,
	model.MethodCheque:       true,
	model.MethodOther:        true,
}

// PaymentInput is a requested payment before validation.
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
	Notes     string
	PaidAt    *time.Time
}

// NormalizeMethod coerces unrecognized payment methods to "other".
// Unknown input is not an error.
func NormalizeMethod(method string) string {
	if supportedMethods[method] {
		return method
	}
	return model.MethodOther
}

// NewPayment validates and normalizes a payment input into an immutable
// record. PaidAt defaults to now when absent.
func NewPayment(in PaymentInput, recordedBy uuid.UUID, now time.Time) (model.PaymentRecord, error) {
	if !in.Amount.IsPositive() {
		return model.PaymentRecord{}, ErrNonPositiveAmount
	}

	paidAt := now
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}

	return model.PaymentRecord{
		Method:     NormalizeMethod(in.Method),
		Amount:     in.Amount.Round(2),
		Reference:  in.Reference,
		Notes:      in.Notes,
		PaidAt:     paidAt,
		RecordedBy: recordedBy,
	}, nil
}

// PaymentsTotal sums the amounts of every recorded payment.
func PaymentsTotal(payments []model.PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// DeriveStatus decides the invoice status after a payment append or a total
// recompute. Only the payment-recording path promotes draft to sent;
// recomputation with no payments leaves the current status alone. Explicit
// status overrides are handled by the caller, not here.
func DeriveStatus(paidTotal, invoiceTotal decimal.Decimal, current string, onPaymentPath bool) string {
	switch {
	case paidTotal.IsPositive() && paidTotal.GreaterThanOrEqual(invoiceTotal):
		return model.StatusPaid
	case paidTotal.IsPositive():
		return model.StatusPartial
	case onPaymentPath && current == model.StatusDraft:
		return model.StatusSent
	default:
		return current
	}
}
