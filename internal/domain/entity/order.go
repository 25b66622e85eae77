package entity

// OrderItem is a line item frozen at purchase time.
type OrderItem struct {
	ID              int64   `json:"id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	Subtotal        float64 `json:"subtotal"`
}

// Order is a purchase created from the cart.
type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	TotalAmount   float64     `json:"total_amount"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
	Items         []OrderItem `json:"items"`
}
