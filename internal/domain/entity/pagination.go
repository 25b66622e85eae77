package entity

// Pagination is the list metadata the API returns alongside collections.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page,omitempty"`
	PrevPage    *int `json:"prev_page,omitempty"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
}
