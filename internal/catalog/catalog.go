// Package catalog ships the static product set of the Graziella
// storefront. The core only ever reads it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"golang.org/x/text/currency"

	"github.com/graziella-cheese/shopcore/internal/domain"
)

//go:embed cheeses.json
var cheesesJSON []byte

type productRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"priceCurrency"`
	Icon        string `json:"icon"`
}

// Catalog is an immutable product list satisfying the catalog port.
type Catalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

// Static loads the embedded cheese catalog.
func Static() (*Catalog, error) {
	var records []productRecord
	if err := json.Unmarshal(cheesesJSON, &records); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]domain.Product, len(records))}
	for _, record := range records {
		unit, err := currency.ParseISO(record.Currency)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", record.Currency, err)
		}

		product := domain.Product{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
			Price:       domain.Money{Amount: record.Price, Currency: unit},
			Icon:        record.Icon,
		}
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("product[%s]: %w", record.ID, err)
		}
		if _, dup := c.byID[product.ID]; dup {
			return nil, fmt.Errorf("duplicate product id[%s]", product.ID)
		}

		c.products = append(c.products, product)
		c.byID[product.ID] = product
	}

	return c, nil
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []domain.Product {
	products := make([]domain.Product, len(c.products))
	copy(products, c.products)
	return products
}

// Product returns the descriptor for an id, if present.
func (c *Catalog) Product(id string) (domain.Product, bool) {
	product, ok := c.byID[id]
	return product, ok
}
