package cart

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart and
// checkout services.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	EnsureOpenCart(ctx context.Context, userID int64) (*models.Cart, error)
	LockOpenCart(ctx context.Context, userID int64) (*models.Cart, error)
	HasAnyCart(ctx context.Context, userID int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Cart, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Cart, error)
	SaveTotals(ctx context.Context, cart *models.Cart) error
	MarkOrdered(ctx context.Context, id int64, at time.Time) (bool, error)

	FindItem(ctx context.Context, cartID, bookID int64) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, item *models.CartItem) error
	ListItems(ctx context.Context, cartID int64) ([]models.CartItem, error)
}
