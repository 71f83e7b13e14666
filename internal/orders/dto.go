package orders

import (
	"time"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/types"
)

// OrderLineDTO is one immutable line of an order snapshot.
type OrderLineDTO struct {
	BookID       int64  `json:"book_id"`
	BookName     string `json:"book_name"`
	BookAuthor   string `json:"book_author"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int64  `json:"quantity"`
	Price        int64  `json:"price"`
	PriceDisplay string `json:"price_display"`
}

// OrderDTO is the snapshot returned by checkout and the orders endpoints.
type OrderDTO struct {
	ID                int64          `json:"order_id"`
	CartID            int64          `json:"cart_id"`
	UserID            int64          `json:"user_id"`
	TotalPrice        int64          `json:"total_price"`
	TotalPriceDisplay string         `json:"total_price_display"`
	TotalQuantity     int64          `json:"total_quantity"`
	Lines             []OrderLineDTO `json:"lines"`
	CreatedAt         time.Time      `json:"created_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{
			BookID:       l.BookID,
			BookName:     l.BookName,
			BookAuthor:   l.BookAuthor,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			Price:        l.Price,
			PriceDisplay: types.FormatMinor(l.Price),
		})
	}
	return &OrderDTO{
		ID:                o.ID,
		CartID:            o.CartID,
		UserID:            o.UserID,
		TotalPrice:        o.TotalPrice,
		TotalPriceDisplay: types.FormatMinor(o.TotalPrice),
		TotalQuantity:     o.TotalQuantity,
		Lines:             lines,
		CreatedAt:         o.CreatedAt,
	}
}
