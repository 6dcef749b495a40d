package invoice

import (
	"testing"
	"time"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMethod(t *testing.T) {
	assert.Equal(t, model.MethodCash, NormalizeMethod("cash"))
	assert.Equal(t, model.MethodBankTransfer, NormalizeMethod("bank_transfer"))
	assert.Equal(t, model.MethodOther, NormalizeMethod("paypal"))
	assert.Equal(t, model.MethodOther, NormalizeMethod(""))
}

func TestNewPaymentRejectsNonPositiveAmounts(t *testing.T) {
	now := time.Now()
	recordedBy := uuid.New()

	_, err := NewPayment(PaymentInput{Amount: d("0")}, recordedBy, now)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = NewPayment(PaymentInput{Amount: d("-10")}, recordedBy, now)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestNewPaymentDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recordedBy := uuid.New()

	payment, err := NewPayment(PaymentInput{Amount: d("49.999"), Method: "venmo"}, recordedBy, now)
	require.NoError(t, err)

	assert.Equal(t, model.MethodOther, payment.Method)
	assert.Equal(t, "50", payment.Amount.String())
	assert.Equal(t, now, payment.PaidAt)
	assert.Equal(t, recordedBy, payment.RecordedBy)
}

func TestNewPaymentExplicitPaidAt(t *testing.T) {
	now := time.Now()
	paidAt := now.Add(-48 * time.Hour)

	payment, err := NewPayment(PaymentInput{Amount: d("10"), Method: "cash", PaidAt: &paidAt}, uuid.New(), now)
	require.NoError(t, err)
	assert.Equal(t, paidAt, payment.PaidAt)
}

func TestPaymentsTotal(t *testing.T) {
	payments := []model.PaymentRecord{
		{Amount: d("10.50")},
		{Amount: d("20.25")},
	}
	assert.Equal(t, "30.75", PaymentsTotal(payments).String())
	assert.True(t, PaymentsTotal(nil).IsZero())
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name          string
		paid, total   string
		current       string
		onPaymentPath bool
		want          string
	}{
		{"fully covered", "100", "100", model.StatusSent, true, model.StatusPaid},
		{"overpaid", "150", "100", model.StatusDraft, true, model.StatusPaid},
		{"partial", "40", "100", model.StatusSent, true, model.StatusPartial},
		{"partial on recompute", "40", "100", model.StatusDraft, false, model.StatusPartial},
		{"draft promoted on payment path", "0", "100", model.StatusDraft, true, model.StatusSent},
		{"draft kept on recompute", "0", "100", model.StatusDraft, false, model.StatusDraft},
		{"sent unchanged without payments", "0", "100", model.StatusSent, true, model.StatusSent},
		{"cancelled unchanged", "0", "100", model.StatusCancelled, false, model.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(d(tt.paid), d(tt.total), tt.current, tt.onPaymentPath)
			assert.Equal(t, tt.want, got)
		})
	}
}
