package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProduct marks a malformed product descriptor. Wrapped
// errors carry the reason.
var ErrInvalidProduct = errors.New("invalid product")

// Product is a read-only catalog descriptor. The core never mutates
// the catalog, it only copies descriptors into cart line items.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       Money
	Icon        string
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	}
	if p.Price.Amount < 0 {
		return fmt.Errorf("%w: negative price %d", ErrInvalidProduct, p.Price.Amount)
	}
	return nil
}
