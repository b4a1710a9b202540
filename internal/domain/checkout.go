package domain

import "time"

// Form field names as the storefront posts them.
const (
	FieldFirstName      = "firstName"
	FieldLastName       = "lastName"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldCity           = "city"
	FieldZipCode        = "zipCode"
	FieldCountry        = "country"
	FieldCardNumber     = "cardNumber"
	FieldExpiryDate     = "expiryDate"
	FieldCVV            = "cvv"
	FieldBillingAddress = "billingAddress"
	FieldNotes          = "notes"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "creditCard"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bankTransfer"
)

// CardBased reports whether the method requires card details.
func (m PaymentMethod) CardBased() bool {
	return m == PaymentCreditCard
}

// FormFields maps field name to its current masked value.
type FormFields map[string]string

func (f FormFields) Clone() FormFields {
	clone := make(FormFields, len(f))
	for name, value := range f {
		clone[name] = value
	}
	return clone
}

// ValidationErrors maps field name to a human-readable message. It is
// regenerated whole on every validation pass, never merged.
type ValidationErrors map[string]string

// SubmissionState is the checkout state machine position. Transient,
// never persisted.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Order is the confirmation record for a submitted checkout. IDs are
// distinguishable within a session, not globally unique.
type Order struct {
	ID          string
	SubmittedAt time.Time
}
