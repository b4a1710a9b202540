package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/graziella-cheese/shopcore/internal/cart"
	"github.com/graziella-cheese/shopcore/internal/checkout"
	"github.com/graziella-cheese/shopcore/internal/domain"
	"github.com/graziella-cheese/shopcore/internal/kv/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type gatewayFunc func(ctx context.Context, fields domain.FormFields, items []domain.CartItem) error

func (f gatewayFunc) Submit(ctx context.Context, fields domain.FormFields, items []domain.CartItem) error {
	return f(ctx, fields, items)
}

var acceptAll = gatewayFunc(func(context.Context, domain.FormFields, []domain.CartItem) error {
	return nil
})

func newTestOrchestrator(t *testing.T, gateway gatewayFunc) (*checkout.Orchestrator, *cart.Store) {
	t.Helper()
	ctx := t.Context()

	cartStore, err := cart.New(ctx, memory.New())
	require.NoError(t, err)

	product := domain.Product{ID: "burrata-classica", Name: "Буррата", Price: domain.RUB(62000)}
	require.NoError(t, cartStore.AddItem(ctx, product, 2))

	o, err := checkout.New(ctx, cartStore, gateway, memory.New())
	require.NoError(t, err)

	for name, value := range validFields() {
		o.SetField(ctx, name, value)
	}
	return o, cartStore
}

func TestSubmitSuccess(t *testing.T) {
	ctx := t.Context()

	var gotItems []domain.CartItem
	o, cartStore := newTestOrchestrator(t, func(_ context.Context, _ domain.FormFields, items []domain.CartItem) error {
		gotItems = items
		return nil
	})

	order, err := o.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Regexp(t, regexp.MustCompile(`^GRZ-\d{1,6}$`), order.ID)
	assert.WithinDuration(t, time.Now(), order.SubmittedAt, time.Minute)

	// The gateway saw the cart snapshot, then the cart was cleared.
	require.Len(t, gotItems, 1)
	assert.Equal(t, 2, gotItems[0].Quantity)
	assert.Empty(t, cartStore.Items())
	assert.Equal(t, int64(0), cartStore.TotalPrice().Amount)

	assert.Equal(t, domain.StateSucceeded, o.State())
	require.NotNil(t, o.LastOrder())
	assert.Equal(t, order.ID, o.LastOrder().ID)
}

func TestSubmitValidationFailure(t *testing.T) {
	ctx := t.Context()

	cartStore, err := cart.New(ctx, memory.New())
	require.NoError(t, err)
	require.NoError(t, cartStore.AddItem(ctx, domain.Product{ID: "ricotta-fresca", Price: domain.RUB(32000)}, 1))

	o, err := checkout.New(ctx, cartStore, acceptAll, memory.New())
	require.NoError(t, err)

	order, err := o.Submit(ctx)
	require.Nil(t, order)

	var validationErr *checkout.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 11)

	// Cart and state untouched; the caller may correct and retry.
	assert.Len(t, cartStore.Items(), 1)
	assert.Equal(t, domain.StateIdle, o.State())
	assert.Nil(t, o.LastOrder())
}

func TestSubmitGatewayFailure(t *testing.T) {
	ctx := t.Context()

	o, cartStore := newTestOrchestrator(t, func(context.Context, domain.FormFields, []domain.CartItem) error {
		return fmt.Errorf("upstream timeout")
	})

	order, err := o.Submit(ctx)
	require.Nil(t, order)
	require.ErrorContains(t, err, "upstream timeout")

	// Fields and cart retained for retry, state back to idle.
	assert.Equal(t, "anna@example.com", o.Field(domain.FieldEmail))
	assert.Len(t, cartStore.Items(), 1)
	assert.Equal(t, domain.StateIdle, o.State())
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	ctx := t.Context()

	failing := true
	o, _ := newTestOrchestrator(t, func(context.Context, domain.FormFields, []domain.CartItem) error {
		if failing {
			return fmt.Errorf("upstream timeout")
		}
		return nil
	})

	_, err := o.Submit(ctx)
	require.Error(t, err)

	failing = false
	order, err := o.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestDuplicateSubmitIgnored(t *testing.T) {
	ctx := t.Context()

	release := make(chan struct{})
	o, _ := newTestOrchestrator(t, func(context.Context, domain.FormFields, []domain.CartItem) error {
		<-release
		return nil
	})

	type result struct {
		order *domain.Order
		err   error
	}
	first := make(chan result, 1)
	go func() {
		order, err := o.Submit(ctx)
		first <- result{order: order, err: err}
	}()

	require.Eventually(t, func() bool {
		return o.State() == domain.StateSubmitting
	}, time.Second, time.Millisecond)

	// Second submit while the first is outstanding: a no-op.
	order, err := o.Submit(ctx)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, checkout.ErrSubmitInFlight)

	close(release)
	got := <-first
	require.NoError(t, got.err)
	require.NotNil(t, got.order)
	assert.Equal(t, got.order.ID, o.LastOrder().ID)
}

func TestSetFieldMasksAndCaches(t *testing.T) {
	ctx := t.Context()

	store := memory.New()
	cartStore, err := cart.New(ctx, memory.New())
	require.NoError(t, err)

	o, err := checkout.New(ctx, cartStore, acceptAll, store)
	require.NoError(t, err)

	masked := o.SetField(ctx, domain.FieldPhone, "9991234567")
	assert.Equal(t, "+7 (999) 123-45-67", masked)
	assert.Equal(t, "+7 (999) 123-45-67", o.Field(domain.FieldPhone))

	o.SetField(ctx, domain.FieldFirstName, "Анна")

	// A fresh session restores the cached fields.
	restored, err := checkout.New(ctx, cartStore, acceptAll, store)
	require.NoError(t, err)
	assert.Equal(t, "+7 (999) 123-45-67", restored.Field(domain.FieldPhone))
	assert.Equal(t, "Анна", restored.Field(domain.FieldFirstName))
}

func TestCorruptFormCacheRemoved(t *testing.T) {
	ctx := t.Context()

	store := memory.New()
	require.NoError(t, store.Set(ctx, checkout.FormStorageKey, "{not json"))

	cartStore, err := cart.New(ctx, memory.New())
	require.NoError(t, err)

	o, err := checkout.New(ctx, cartStore, acceptAll, store)
	require.NoError(t, err)
	assert.Empty(t, o.Fields())

	_, ok, err := store.Get(ctx, checkout.FormStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt cache should have been removed")
}

func TestPaymentMethodSelection(t *testing.T) {
	ctx := t.Context()

	o, _ := newTestOrchestrator(t, acceptAll)

	// Default follows the storefront: card payment.
	assert.Equal(t, domain.PaymentCreditCard, o.PaymentMethod())

	o.SetPaymentMethod(domain.PaymentBankTransfer)
	o.SetField(ctx, domain.FieldCardNumber, "")
	o.SetField(ctx, domain.FieldExpiryDate, "")
	o.SetField(ctx, domain.FieldCVV, "")

	order, err := o.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestSubmitErrorsAreNotValidationErrors(t *testing.T) {
	ctx := t.Context()

	o, _ := newTestOrchestrator(t, func(context.Context, domain.FormFields, []domain.CartItem) error {
		return errors.New("boom")
	})

	_, err := o.Submit(ctx)
	require.Error(t, err)

	var validationErr *checkout.ValidationError
	assert.False(t, errors.As(err, &validationErr))
}
