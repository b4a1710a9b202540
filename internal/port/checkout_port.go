package port

import (
	"context"

	"github.com/graziella-cheese/shopcore/internal/domain"
)

// OrderGateway delivers a filled form and cart snapshot to whatever
// stands in for the real backend. Latency and failure modes are
// opaque to the core.
type OrderGateway interface {
	Submit(ctx context.Context, fields domain.FormFields, items []domain.CartItem) error
}

// Catalog is the read-only product source supplied by the caller.
type Catalog interface {
	Products() []domain.Product
}
