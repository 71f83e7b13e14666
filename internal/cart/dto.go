package cart

import (
	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/types"
)

// AddItemRequest is the payload for POST /cart/add.
type AddItemRequest struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// CartDTO exposes a cart's aggregate totals.
type CartDTO struct {
	ID                int64  `json:"cart_id"`
	UserID            int64  `json:"user_id"`
	TotalPrice        int64  `json:"total_price"`
	TotalPriceDisplay string `json:"total_price_display"`
	TotalQuantity     int64  `json:"total_quantity"`
	IsOrdered         bool   `json:"is_ordered"`
}

// CartSummary is one row of GET /cart/get.
type CartSummary struct {
	CartID    int64 `json:"cart_id"`
	Price     int64 `json:"price"`
	Quantity  int64 `json:"quantity"`
	IsOrdered bool  `json:"is_ordered"`
}

// CartItemDTO is one row of GET /cart/get/{cart_id}.
type CartItemDTO struct {
	ID       int64 `json:"id"`
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
	Price    int64 `json:"price"`
	CartID   int64 `json:"cart_id"`
}

func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	return &CartDTO{
		ID:                c.ID,
		UserID:            c.UserID,
		TotalPrice:        c.TotalPrice,
		TotalPriceDisplay: types.FormatMinor(c.TotalPrice),
		TotalQuantity:     c.TotalQuantity,
		IsOrdered:         c.IsOrdered,
	}
}

func itemFromModel(i models.CartItem) CartItemDTO {
	return CartItemDTO{
		ID:       i.ID,
		BookID:   i.BookID,
		Quantity: i.Quantity,
		Price:    i.Price,
		CartID:   i.CartID,
	}
}
