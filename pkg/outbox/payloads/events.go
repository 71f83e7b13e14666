package payloads

import "time"

// UserRegisteredEvent asks the notification side to deliver the verification link.
type UserRegisteredEvent struct {
	UserID            int64  `json:"user_id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	VerificationToken string `json:"verification_token"`
	VerificationLink  string `json:"verification_link"`
}

// UserVerifiedEvent is emitted once, when is_verified flips to true.
type UserVerifiedEvent struct {
	UserID     int64     `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// OrderLine mirrors one immutable order line.
type OrderLine struct {
	BookID     int64  `json:"book_id"`
	BookName   string `json:"book_name"`
	BookAuthor string `json:"book_author"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int64  `json:"quantity"`
	Price      int64  `json:"price"`
}

// OrderConfirmedEvent carries the order snapshot written at checkout.
type OrderConfirmedEvent struct {
	OrderID       int64       `json:"order_id"`
	CartID        int64       `json:"cart_id"`
	UserID        int64       `json:"user_id"`
	TotalPrice    int64       `json:"total_price"`
	TotalQuantity int64       `json:"total_quantity"`
	Lines         []OrderLine `json:"lines"`
	ConfirmedAt   time.Time   `json:"confirmed_at"`
}

// BookDeletedEvent lists the open carts whose totals changed because the book went away.
type BookDeletedEvent struct {
	BookID          int64   `json:"book_id"`
	AffectedCartIDs []int64 `json:"affected_cart_ids"`
}
