package services_test

import (
	"testing"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder(t *testing.T, f *fixture, method string) *models.Order {
	t.Helper()
	checkoutCart(t, f, 2, "")
	order, err := f.orders.Place(ctx, tenant, buyer, services.PlaceOrderInput{ShippingAddress: address(), PaymentMethod: method})
	require.NoError(t, err)
	return order
}

func TestPaymentSuccess(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f, "card")

	_, err := f.payments.Create(ctx, tenant, buyer, order.ID, "bitcoin")
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.payments.Create(ctx, tenant, buyer+1, order.ID, "card")
	assert.True(t, apperrors.IsNotFound(err))

	payment, err := f.payments.Create(ctx, tenant, buyer, order.ID, " CARD ")
	require.NoError(t, err)
	assert.Equal(t, order.Total, payment.Amount)
	assert.Equal(t, "card", payment.Method)
	assert.Equal(t, models.PaymentRecordPending, payment.Status)

	_, err = f.payments.Verify(ctx, tenant, buyer, payment.ID, services.PaymentVerification{Success: true})
	assert.Equal(t, "Transaction ID is required for a successful payment", apperrors.Hint(err, ""))

	verified, err := f.payments.Verify(ctx, tenant, buyer, payment.ID, services.PaymentVerification{Success: true, TransactionID: "txn_123"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRecordCompleted, verified.Status)
	require.NotNil(t, verified.TransactionID)
	assert.Equal(t, "txn_123", *verified.TransactionID)

	got, err := f.orders.Get(ctx, tenant, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, got.Status)

	_, err = f.payments.Verify(ctx, tenant, buyer, payment.ID, services.PaymentVerification{Success: true, TransactionID: "txn_124"})
	assert.Equal(t, "Payment has already been processed", apperrors.Hint(err, ""))

	_, err = f.payments.Create(ctx, tenant, buyer, order.ID, "card")
	assert.Equal(t, "Order has already been paid", apperrors.Hint(err, ""))

	refunded, err := f.payments.Refund(ctx, tenant, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRecordRefunded, refunded.Status)
	got, err = f.orders.Get(ctx, tenant, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, got.PaymentStatus)

	_, err = f.payments.Refund(ctx, tenant, payment.ID)
	assert.Equal(t, "Only completed payments can be refunded", apperrors.Hint(err, ""))
}

func TestPaymentFailure(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f, "upi")

	payment, err := f.payments.Create(ctx, tenant, buyer, order.ID, "upi")
	require.NoError(t, err)
	failed, err := f.payments.Verify(ctx, tenant, buyer, payment.ID, services.PaymentVerification{FailureReason: "declined"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRecordFailed, failed.Status)
	assert.Equal(t, "declined", failed.FailureReason)

	got, err := f.orders.Get(ctx, tenant, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, models.OrderPending, got.Status)

	_, err = f.payments.Refund(ctx, tenant, payment.ID)
	assert.True(t, apperrors.IsInvalidOperation(err))

	retry, err := f.payments.Create(ctx, tenant, buyer, order.ID, "upi")
	require.NoError(t, err, "a failed payment can be retried")

	payments, err := f.payments.ListByOrder(ctx, tenant, &order.UserID, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, retry.ID, payments[0].ID)

	_, err = f.payments.ListByOrder(ctx, tenant, ptr(buyer+1), order.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPaymentOnCancelledOrder(t *testing.T) {
	f := newFixture(t)
	order := placedOrder(t, f, "")
	_, err := f.orders.Cancel(ctx, tenant, buyer, order.ID, "")
	require.NoError(t, err)

	_, err = f.payments.Create(ctx, tenant, buyer, order.ID, "cod")
	assert.Equal(t, "Cannot pay for a cancelled order", apperrors.Hint(err, ""))
}
