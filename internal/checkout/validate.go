package checkout

import (
	"regexp"
	"strings"

	"github.com/graziella-cheese/shopcore/internal/domain"
)

var requiredFields = []string{
	domain.FieldFirstName,
	domain.FieldLastName,
	domain.FieldEmail,
	domain.FieldPhone,
	domain.FieldAddress,
	domain.FieldCity,
	domain.FieldZipCode,
	domain.FieldCountry,
}

var cardFields = []string{
	domain.FieldCardNumber,
	domain.FieldExpiryDate,
	domain.FieldCVV,
}

var fieldLabels = map[string]string{
	domain.FieldFirstName: "First name",
	domain.FieldLastName:  "Last name",
	domain.FieldEmail:     "Email",
	domain.FieldPhone:     "Phone",
	domain.FieldAddress:   "Address",
	domain.FieldCity:      "City",
	domain.FieldZipCode:   "Postal code",
	domain.FieldCountry:   "Country",
}

var (
	emailPattern  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern  = regexp.MustCompile(`^\+7 \(\d{3}\) \d{3}-\d{2}-\d{2}$`)
	postalPattern = regexp.MustCompile(`^\d{6}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3}$`)
)

// ValidateField evaluates the rules for one field against its current
// value. An empty result means the field is acceptable. Blur-time and
// submit-time validation both run through here, so they cannot diverge.
func ValidateField(name string, fields domain.FormFields, method domain.PaymentMethod) string {
	value := strings.TrimSpace(fields[name])

	if label, required := fieldLabels[name]; required && value == "" {
		return label + " is required"
	}

	switch name {
	case domain.FieldEmail:
		if value != "" && !emailPattern.MatchString(value) {
			return "Please enter a valid email address"
		}
	case domain.FieldPhone:
		if value != "" && !phonePattern.MatchString(value) {
			return "Format: +7 (XXX) XXX-XX-XX"
		}
	case domain.FieldZipCode:
		if value != "" && !postalPattern.MatchString(value) {
			return "Postal code must be 6 digits"
		}
	}

	if method.CardBased() {
		switch name {
		case domain.FieldCardNumber:
			if value == "" {
				return "Card number is required"
			}
			if len(digitsOf(value)) != 16 {
				return "Card number must be 16 digits"
			}
		case domain.FieldExpiryDate:
			if value == "" {
				return "Expiry date is required"
			}
			if !expiryPattern.MatchString(value) {
				return "Expiry format: MM/YY"
			}
		case domain.FieldCVV:
			if value == "" {
				return "CVV is required"
			}
			if !cvvPattern.MatchString(value) {
				return "CVV must be 3 digits"
			}
		}
	}

	return ""
}

// ValidateAll evaluates every rule and returns the full error map,
// regenerated from scratch. An empty map means the form may be
// submitted.
func ValidateAll(fields domain.FormFields, method domain.PaymentMethod) domain.ValidationErrors {
	errs := make(domain.ValidationErrors)

	checked := append(append([]string{}, requiredFields...), cardFields...)
	for _, name := range checked {
		if msg := ValidateField(name, fields, method); msg != "" {
			errs[name] = msg
		}
	}

	return errs
}
