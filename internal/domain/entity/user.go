// Package entity contains the core business objects of the project, plain
// records mirroring the shapes the API returns. The client enforces no
// invariants on them; the server is authoritative.
package entity

// User is the core identity record. Nested detail records are optional and
// only present when the corresponding endpoint has loaded them.
type User struct {
	ID          int64  `json:"id"`
	Mail        string `json:"mail"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	Verified    bool   `json:"verified"`
	Blacklisted bool   `json:"blacklisted"`
	Removed     bool   `json:"removed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`

	Detail             *UserDetail         `json:"user_details,omitempty"`
	Location           *Location           `json:"location,omitempty"`
	EntrepreneurDetail *EntrepreneurDetail `json:"entrepreneur_details,omitempty"`
}

// UserDetail holds personal data attached to a user.
type UserDetail struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date,omitempty"`
}

// Location holds the user's address data.
type Location struct {
	ID         int64  `json:"id"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

// EntrepreneurDetail holds business data for users with an entrepreneur role.
type EntrepreneurDetail struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	TaxID       string `json:"tax_id"`
	Website     string `json:"website,omitempty"`
}

// UserAction is a single audit entry from the user's action history.
type UserAction struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	ActionType string `json:"action_type"`
	CreatedAt  string `json:"created_at"`
}
