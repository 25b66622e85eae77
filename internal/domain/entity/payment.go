package entity

// PaymentOrderInfo is the denormalized slice of the parent order some
// payment responses embed.
type PaymentOrderInfo struct {
	ID          int64   `json:"id"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// Payment is a payment attempt against an order.
type Payment struct {
	ID            int64             `json:"id"`
	OrderID       int64             `json:"order_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	Order         *PaymentOrderInfo `json:"order,omitempty"`
}
