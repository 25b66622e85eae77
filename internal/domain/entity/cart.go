package entity

// CartItem is one line of the shopping cart. Prices and subtotals are
// computed server-side and never recomputed locally.
type CartItem struct {
	ItemID          int64    `json:"item_id"`
	Quantity        int      `json:"quantity"`
	PriceAtPurchase float64  `json:"price_at_purchase"`
	Subtotal        float64  `json:"subtotal"`
	Product         *Product `json:"product,omitempty"`
}

// Cart is the full cart state as returned by the cart endpoints.
type Cart struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
	ItemsCount  int        `json:"items_count"`
}

// CartSummary is the slimmer payload some mutations return instead of the
// full cart.
type CartSummary struct {
	TotalAmount float64 `json:"total_amount"`
	ItemsCount  int     `json:"items_count"`
}
