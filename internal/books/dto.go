package books

import (
	"time"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/types"
)

// Actor is the authenticated caller performing a catalog mutation.
type Actor struct {
	UserID    int64
	Superuser bool
}

// Upper bounds for catalog values. The validate tags below must match.
const (
	MaxPrice    int64 = 10_000_000_000
	MaxQuantity int64 = 1_000_000
)

// CreateBookRequest is the payload for POST /books.
type CreateBookRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	Price    int64  `json:"price" validate:"gte=0,lte=10000000000"`
	Quantity int64  `json:"quantity" validate:"gte=0,lte=1000000"`
}

// UpdateBookRequest lists the only fields PUT /books/{id} may change.
type UpdateBookRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Author   *string `json:"author,omitempty" validate:"omitempty,max=255"`
	Price    *int64  `json:"price,omitempty" validate:"omitempty,gte=0,lte=10000000000"`
	Quantity *int64  `json:"quantity,omitempty" validate:"omitempty,gte=0,lte=1000000"`
}

// UpdateQuantityRequest is the payload for PATCH /books/{id}/quantity.
type UpdateQuantityRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0,lte=1000000"`
}

// BookDTO is the transport shape for a catalog entry.
type BookDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Author       string    `json:"author"`
	Price        int64     `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Quantity     int64     `json:"quantity"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromModel(b *models.Book) *BookDTO {
	if b == nil {
		return nil
	}
	return &BookDTO{
		ID:           b.ID,
		Name:         b.Name,
		Author:       b.Author,
		Price:        b.Price,
		PriceDisplay: types.FormatMinor(b.Price),
		Quantity:     b.Quantity,
		UserID:       b.UserID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
