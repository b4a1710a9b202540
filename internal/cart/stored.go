package cart

import (
	"fmt"

	"golang.org/x/text/currency"

	"github.com/graziella-cheese/shopcore/internal/domain"
)

// storedItem is the persisted line-item shape, compatible with the
// storefront's local storage payload (prices in minor units).
type storedItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Currency string `json:"priceCurrency"`
	Quantity int    `json:"quantity"`
	Icon     string `json:"icon"`
}

func mapItemsToStored(items []domain.CartItem) []storedItem {
	stored := make([]storedItem, 0, len(items))

	for _, item := range items {
		stored = append(stored, storedItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    item.Price.Amount,
			Currency: item.Price.Currency.String(),
			Quantity: item.Quantity,
			Icon:     item.Icon,
		})
	}

	return stored
}

func mapStoredToItem(stored storedItem) (domain.CartItem, error) {
	if stored.ID == "" {
		return domain.CartItem{}, fmt.Errorf("item id is empty")
	}
	if stored.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("quantity[%d] is not positive", stored.Quantity)
	}
	if stored.Price < 0 {
		return domain.CartItem{}, fmt.Errorf("price[%d] is negative", stored.Price)
	}

	parsedCurrency, err := currency.ParseISO(stored.Currency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", stored.Currency, err)
	}

	return domain.CartItem{
		ProductID: stored.ID,
		Name:      stored.Name,
		Price:     domain.Money{Amount: stored.Price, Currency: parsedCurrency},
		Quantity:  stored.Quantity,
		Icon:      stored.Icon,
	}, nil
}

func mapStoredToItems(stored []storedItem) ([]domain.CartItem, error) {
	var items []domain.CartItem

	seen := make(map[string]struct{}, len(stored))
	for _, record := range stored {
		item, err := mapStoredToItem(record)
		if err != nil {
			return nil, fmt.Errorf("mapStoredToItem: %w", err)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, fmt.Errorf("duplicate item id[%s]", item.ProductID)
		}
		seen[item.ProductID] = struct{}{}

		items = append(items, item)
	}

	return items, nil
}
