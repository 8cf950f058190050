package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "refurb/internal/catalog/gateway"
	"refurb/internal/settlement/models"
	"refurb/internal/settlement/ports"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/sentinel"
	"refurb/pkg/platform/upstream"
)

var fixed = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestSimulated(opts ...SimulatedOption) *Simulated {
	base := []SimulatedOption{
		WithLatency(0, 0),
		WithSeedData(),
		WithNow(func() time.Time { return fixed }),
	}
	return NewSimulated(append(base, opts...)...)
}

func payout(method models.Method) ports.ProcessRequest {
	return ports.ProcessRequest{Amount: decimal.NewFromInt(85000), Method: method, Notes: "Payment processed"}
}

func TestSeedPayments(t *testing.T) {
	seeds := SeedPayments()
	require.Len(t, seeds, 4)
	for i, p := range seeds {
		assert.NoError(t, p.Validate(), p.ProductTitle)
		assert.Equal(t, catalog.SeedProductID(i+1), p.ProductID, "payout links to its listing")
	}
	assert.False(t, seeds[2].CustomerVerified)
	assert.False(t, seeds[3].ProductVerified)
	assert.Equal(t, models.StatusCompleted, seeds[1].Status)
}

func TestSimulated_ListPayments(t *testing.T) {
	gw := newTestSimulated()
	list, err := gw.ListPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, SeedPaymentID(1), list[0].ID)
	assert.Equal(t, SeedPaymentID(4), list[3].ID)

	list[0].CustomerName = "changed"
	again, _ := gw.ListPayments(context.Background())
	assert.Equal(t, "John Doe", again[0].CustomerName)
}

func TestSimulated_ProcessAndSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("verified payout completes", func(t *testing.T) {
		gw := newTestSimulated()
		res, err := gw.ProcessPayment(ctx, SeedPaymentID(1), payout(models.MethodUPI))
		require.NoError(t, err)
		assert.Empty(t, res.TransactionID)
		assert.Equal(t, fixed, res.ProcessedAt)

		require.NoError(t, gw.ConfirmSettlement(ctx, SeedPaymentID(1), "TXN1"))
		p, ok := gw.Payment(SeedPaymentID(1))
		require.True(t, ok)
		assert.Equal(t, models.StatusCompleted, p.Status)
		assert.Equal(t, "TXN1", p.TransactionID)
	})

	t.Run("gates are enforced by the backend too", func(t *testing.T) {
		gw := newTestSimulated()
		_, err := gw.ProcessPayment(ctx, SeedPaymentID(3), payout(models.MethodUPI))
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidState))
		assert.Equal(t, "Cannot process payment: Customer is not verified", upstream.FailureMessage(err, ""))
	})

	t.Run("unknown payout", func(t *testing.T) {
		gw := newTestSimulated()
		_, err := gw.ProcessPayment(ctx, id.NewPaymentID(), payout(models.MethodUPI))
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("settling a pending payout is refused", func(t *testing.T) {
		gw := newTestSimulated()
		err := gw.ConfirmSettlement(ctx, SeedPaymentID(1), "TXN1")
		assert.True(t, errors.Is(err, sentinel.ErrInvalidState))
	})

	t.Run("injected settle fault fails the payout", func(t *testing.T) {
		gw := newTestSimulated()
		_, err := gw.ProcessPayment(ctx, SeedPaymentID(1), payout(models.MethodCheck))
		require.NoError(t, err)
		gw.FailNext(OpSettle, upstream.Rejected("Beneficiary account closed"))

		err = gw.ConfirmSettlement(ctx, SeedPaymentID(1), "TXN2")
		require.Error(t, err)
		p, _ := gw.Payment(SeedPaymentID(1))
		assert.Equal(t, models.StatusFailed, p.Status)
		assert.Equal(t, "Beneficiary account closed", p.FailureReason)
	})
}

func TestSimulated_UpdateVerification(t *testing.T) {
	ctx := context.Background()
	gw := newTestSimulated()
	yes := true

	require.NoError(t, gw.UpdateVerification(ctx, SeedPaymentID(3), models.VerificationUpdate{Customer: &yes}))
	_, err := gw.ProcessPayment(ctx, SeedPaymentID(3), payout(models.MethodBankTransfer))
	require.NoError(t, err)

	err = gw.UpdateVerification(ctx, SeedPaymentID(2), models.VerificationUpdate{Customer: &yes})
	assert.True(t, errors.Is(err, sentinel.ErrInvalidState))

	gw.FailNext(OpVerify, errors.New("connection reset"))
	err = gw.UpdateVerification(ctx, SeedPaymentID(4), models.VerificationUpdate{Product: &yes})
	require.Error(t, err)
	p, _ := gw.Payment(SeedPaymentID(4))
	assert.False(t, p.ProductVerified)
}

func TestSimulated_HonoursCancellation(t *testing.T) {
	gw := NewSimulated(WithLatency(time.Hour, time.Hour), WithSeedData())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gw.ListPayments(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
