package services_test

import (
	"testing"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingProviderValidation(t *testing.T) {
	tests := []struct {
		name string
		in   services.ProviderInput
		hint string
	}{
		{"missing code", services.ProviderInput{Name: "Post"}, "Provider name and code are required"},
		{"negative rate", services.ProviderInput{Name: "Post", Code: "post", PerItemRate: -1}, "Rates cannot be negative"},
		{"negative threshold", services.ProviderInput{Name: "Post", Code: "post", FreeShippingThreshold: ptr(-5.0)}, "Free shipping threshold cannot be negative"},
		{"negative days", services.ProviderInput{Name: "Post", Code: "post", EstimatedDays: -2}, "Estimated days cannot be negative"},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.shipping.Create(ctx, tenant, tt.in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.hint, apperrors.Hint(err, ""))
		})
	}
}

func TestShippingProviderCrud(t *testing.T) {
	f := newFixture(t)

	post, err := f.shipping.Create(ctx, tenant, services.ProviderInput{Name: " Royal Post ", Code: " POST "})
	require.NoError(t, err)
	assert.Equal(t, "Royal Post", post.Name)
	assert.Equal(t, "post", post.Code)
	assert.Equal(t, 5, post.EstimatedDays)
	assert.True(t, post.IsActive)

	_, err = f.shipping.Create(ctx, tenant, services.ProviderInput{Name: "Dup", Code: "post"})
	assert.True(t, apperrors.IsAlreadyExists(err))

	hidden, err := f.shipping.Create(ctx, tenant, services.ProviderInput{Name: "Drone", Code: "drone", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	active, err := f.shipping.Providers(ctx, tenant, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, post.ID, active[0].ID)
	all, err := f.shipping.Providers(ctx, tenant, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := f.shipping.Update(ctx, tenant, post.ID, services.ProviderInput{Name: "Royal Post", Code: "post", BaseRate: 3, EstimatedDays: 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.BaseRate)
	assert.Equal(t, 2, updated.EstimatedDays)

	require.NoError(t, f.shipping.Delete(ctx, tenant, hidden.ID))
	_, err = f.shipping.Get(ctx, tenant, hidden.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestShippingRates(t *testing.T) {
	f := newFixture(t)
	_, err := f.shipping.Create(ctx, tenant, services.ProviderInput{Name: "Courier", Code: "courier", BaseRate: 5, PerItemRate: 1.25, FreeShippingThreshold: ptr(100.0), EstimatedDays: 2})
	require.NoError(t, err)
	_, err = f.shipping.Create(ctx, tenant, services.ProviderInput{Name: "Post", Code: "post", BaseRate: 2.5})
	require.NoError(t, err)

	rates, err := f.shipping.Rates(ctx, tenant, 40, 3)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "Courier", rates[0].Name)
	assert.Equal(t, 8.75, rates[0].Cost)
	assert.Equal(t, 2, rates[0].EstimatedDays)
	assert.Equal(t, 2.5, rates[1].Cost)

	rates, err = f.shipping.Rates(ctx, tenant, 100, 3)
	require.NoError(t, err)
	assert.Zero(t, rates[0].Cost, "free above the threshold")

	_, err = f.shipping.Rates(ctx, tenant, -1, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestShippingTrackAndDeactivate(t *testing.T) {
	f := newFixture(t)
	provider, err := f.shipping.Create(ctx, tenant, services.ProviderInput{
		Name:                "Courier",
		Code:                "courier",
		EstimatedDays:       3,
		TrackingURLTemplate: "https://track.example/{tracking}",
	})
	require.NoError(t, err)
	checkoutCart(t, f, 1, "")
	order, err := f.orders.Place(ctx, tenant, buyer, services.PlaceOrderInput{ShippingAddress: address(), ShippingProviderID: &provider.ID})
	require.NoError(t, err)

	info, err := f.shipping.Track(ctx, tenant, ptr(buyer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, info.OrderNumber)
	assert.Equal(t, "Courier", info.Provider)
	assert.Empty(t, info.TrackingURL)
	require.NotNil(t, info.EstimatedDelivery)
	assert.WithinDuration(t, order.CreatedAt.AddDate(0, 0, 3), *info.EstimatedDelivery, time.Second)

	for _, status := range []models.OrderStatus{models.OrderConfirmed, models.OrderProcessing} {
		_, err = f.orders.UpdateStatus(ctx, tenant, order.ID, services.StatusUpdate{Status: status})
		require.NoError(t, err)
	}
	_, err = f.orders.UpdateStatus(ctx, tenant, order.ID, services.StatusUpdate{Status: models.OrderShipped, TrackingNumber: ptr("AB123")})
	require.NoError(t, err)

	info, err = f.shipping.Track(ctx, tenant, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://track.example/AB123", info.TrackingURL)
	assert.Equal(t, models.OrderShipped, info.Status)

	_, err = f.shipping.Track(ctx, tenant, ptr(buyer+1), order.ID)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, f.shipping.Delete(ctx, tenant, provider.ID))
	kept, err := f.shipping.Get(ctx, tenant, provider.ID)
	require.NoError(t, err, "providers used by orders are kept")
	assert.False(t, kept.IsActive)
}
