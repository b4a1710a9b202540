package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/graziella-cheese/shopcore/internal/cart"
	"github.com/graziella-cheese/shopcore/internal/domain"
	"github.com/graziella-cheese/shopcore/internal/port"
)

// FormStorageKey is the DurableStore key the form cache persists
// under, carried over from the storefront's local storage key.
const FormStorageKey = "graziella-checkout-form"

const orderIDPrefix = "GRZ-"

// ErrSubmitInFlight is returned when Submit is called while a
// submission is already outstanding. The call is a no-op: no second
// submission starts and the in-flight one is unaffected. Callers
// treat it as "ignore", not as a failure to report.
var ErrSubmitInFlight = errors.New("submission already in flight")

// ValidationError carries the field-scoped messages of a failed
// validation pass. The form is retained for correction.
type ValidationError struct {
	Fields domain.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// Orchestrator owns the form fields for one checkout session and
// drives the submission state machine.
type Orchestrator struct {
	cart    *cart.Store
	gateway port.OrderGateway
	store   port.DurableStore
	logger  *zap.Logger

	mu        sync.Mutex
	state     domain.SubmissionState
	method    domain.PaymentMethod
	fields    domain.FormFields
	lastOrder *domain.Order
}

type Option func(*Orchestrator)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New restores the cached form from the durable store. A corrupt
// cache is removed and the session starts with empty fields.
func New(ctx context.Context, cartStore *cart.Store, gateway port.OrderGateway, store port.DurableStore, opts ...Option) (*Orchestrator, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store is nil")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}

	o := &Orchestrator{
		cart:    cartStore,
		gateway: gateway,
		store:   store,
		logger:  zap.NewNop(),
		state:   domain.StateIdle,
		method:  domain.PaymentCreditCard,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.fields = o.restoreFields(ctx)
	return o, nil
}

// SetField masks the raw input for the named field, stores it and
// refreshes the form cache. Returns the masked value for display.
func (o *Orchestrator) SetField(ctx context.Context, name, raw string) string {
	masked := Mask(name, raw)

	o.mu.Lock()
	o.fields[name] = masked
	fields := o.fields.Clone()
	o.mu.Unlock()

	o.persistFields(ctx, fields)
	return masked
}

func (o *Orchestrator) Field(name string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.fields[name]
}

// Fields returns a copy of the current masked field values.
func (o *Orchestrator) Fields() domain.FormFields {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.fields.Clone()
}

func (o *Orchestrator) SetPaymentMethod(method domain.PaymentMethod) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.method = method
}

func (o *Orchestrator) PaymentMethod() domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.method
}

func (o *Orchestrator) State() domain.SubmissionState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// LastOrder returns the confirmation record of the most recent
// successful submission, if any.
func (o *Orchestrator) LastOrder() *domain.Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.lastOrder == nil {
		return nil
	}
	order := *o.lastOrder
	return &order
}

// Submit runs validation and, if it passes, delivers the form and
// cart snapshot through the order gateway. On success the cart is
// cleared and the confirmation record returned. On any failure the
// fields are retained unchanged and the machine returns to idle so
// the caller may retry. A Submit while one is outstanding returns
// ErrSubmitInFlight and does nothing.
func (o *Orchestrator) Submit(ctx context.Context) (*domain.Order, error) {
	o.mu.Lock()
	if o.state == domain.StateSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	o.state = domain.StateValidating
	fields := o.fields.Clone()
	method := o.method

	if errs := ValidateAll(fields, method); len(errs) > 0 {
		o.state = domain.StateIdle
		o.mu.Unlock()
		return nil, &ValidationError{Fields: errs}
	}

	o.state = domain.StateSubmitting
	o.mu.Unlock()

	items := o.cart.Items()
	if err := o.gateway.Submit(ctx, fields, items); err != nil {
		o.mu.Lock()
		o.state = domain.StateIdle
		o.mu.Unlock()
		return nil, fmt.Errorf("gateway.Submit: %w", err)
	}

	now := time.Now()
	order := &domain.Order{ID: newOrderID(now), SubmittedAt: now}

	o.mu.Lock()
	o.lastOrder = order
	o.state = domain.StateSucceeded
	o.mu.Unlock()

	o.cart.Clear(ctx)

	confirmed := *order
	return &confirmed, nil
}

// newOrderID derives a session-unique id from the submission time:
// the GRZ prefix plus the last six digits of unix milliseconds. Not
// globally unique, which is a documented limitation.
func newOrderID(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return orderIDPrefix + ms
}

func (o *Orchestrator) persistFields(ctx context.Context, fields domain.FormFields) {
	payload, err := json.Marshal(fields)
	if err != nil {
		o.logger.Warn("marshal form cache", zap.Error(err))
		return
	}
	if err := o.store.Set(ctx, FormStorageKey, string(payload)); err != nil {
		o.logger.Warn("persist form cache", zap.Error(err))
	}
}

func (o *Orchestrator) restoreFields(ctx context.Context) domain.FormFields {
	raw, ok, err := o.store.Get(ctx, FormStorageKey)
	if err != nil {
		o.logger.Warn("read form cache", zap.Error(err))
		return make(domain.FormFields)
	}
	if !ok {
		return make(domain.FormFields)
	}

	var fields domain.FormFields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		o.logger.Warn("discarding corrupt form cache", zap.Error(err))
		if err := o.store.Remove(ctx, FormStorageKey); err != nil {
			o.logger.Warn("remove form cache", zap.Error(err))
		}
		return make(domain.FormFields)
	}
	if fields == nil {
		fields = make(domain.FormFields)
	}
	return fields
}
