// Package checkout holds the form intake engine: input maskers,
// validation rules and the submission state machine.
package checkout

import (
	"regexp"
	"strings"

	"github.com/graziella-cheese/shopcore/internal/domain"
)

// Maskers are total and idempotent: re-applying one to its own output
// yields the same output. Numeric maskers strip non-digits before
// re-deriving the mask, so partial input renders a partial mask.

var nonDigits = regexp.MustCompile(`\D`)

func digitsOf(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// Phone renders the national number as +7 (DDD) DDD-DD-DD, growing as
// digits are typed. A leading 7 is treated as the country code; the
// national part caps at ten digits.
func Phone(raw string) string {
	digits := digitsOf(raw)
	if digits == "" {
		return ""
	}

	d := strings.TrimPrefix(digits, "7")
	if len(d) > 10 {
		d = d[:10]
	}

	var b strings.Builder
	b.WriteString("+7")
	if len(d) > 0 {
		b.WriteString(" (")
		b.WriteString(d[:min(3, len(d))])
	}
	if len(d) >= 3 {
		b.WriteString(")")
	}
	if len(d) > 3 {
		b.WriteString(" ")
		b.WriteString(d[3:min(6, len(d))])
	}
	if len(d) > 6 {
		b.WriteString("-")
		b.WriteString(d[6:min(8, len(d))])
	}
	if len(d) > 8 {
		b.WriteString("-")
		b.WriteString(d[8:min(10, len(d))])
	}
	return b.String()
}

// PostalCode keeps digits only, at most six.
func PostalCode(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 6 {
		digits = digits[:6]
	}
	return digits
}

// CardNumber keeps at most sixteen digits, grouped in blocks of four.
func CardNumber(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var groups []string
	for i := 0; i < len(digits); i += 4 {
		groups = append(groups, digits[i:min(i+4, len(digits))])
	}
	return strings.Join(groups, " ")
}

// Expiry keeps at most four digits, inserting the slash once the
// month is complete.
func Expiry(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// SecurityCode keeps digits only, at most three.
func SecurityCode(raw string) string {
	digits := digitsOf(raw)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

// Mask applies the masker for the named form field. Fields without a
// masker pass through unmodified.
func Mask(name, raw string) string {
	switch name {
	case domain.FieldPhone:
		return Phone(raw)
	case domain.FieldZipCode:
		return PostalCode(raw)
	case domain.FieldCardNumber:
		return CardNumber(raw)
	case domain.FieldExpiryDate:
		return Expiry(raw)
	case domain.FieldCVV:
		return SecurityCode(raw)
	default:
		return raw
	}
}
