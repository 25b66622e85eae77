package entity

// ProductPhoto is an uploaded product image.
type ProductPhoto struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// ProductLike records which user liked a product.
type ProductLike struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

// ProductComment is a threaded comment; replies nest one level per parent.
type ProductComment struct {
	ID       int64            `json:"id"`
	UserID   int64            `json:"user_id"`
	Content  string           `json:"content"`
	ParentID *int64           `json:"parent_id,omitempty"`
	Replies  []ProductComment `json:"replies,omitempty"`
}

// Product is the aggregate product record including social counters. Social
// actions (like, rate, comment) return the whole updated aggregate.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         float64          `json:"price"`
	AverageRating float64          `json:"average_rating,omitempty"`
	LikesCount    int              `json:"likes_count"`
	CommentsCount int              `json:"comments_count"`
	Photos        []ProductPhoto   `json:"photos,omitempty"`
	Likes         []ProductLike    `json:"likes,omitempty"`
	Comments      []ProductComment `json:"comments,omitempty"`
}
