package domain

// CartItem is one line item: a catalog product and its selected quantity.
type CartItem struct {
	ProductID string
	Name      string
	Price     Money
	Quantity  int
	Icon      string
}

// Subtotal is the line price, unit price times quantity.
func (i CartItem) Subtotal() Money {
	return i.Price.Mul(i.Quantity)
}

// Cart is the aggregate of line items. Item order is insertion order,
// significant for display only. Totals are always derived, never stored.
type Cart struct {
	Items []CartItem
}

func (c Cart) TotalItems() int {
	var total int
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) TotalPrice() Money {
	total := RUB(0)
	if len(c.Items) > 0 {
		total.Currency = c.Items[0].Price.Currency
	}
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
