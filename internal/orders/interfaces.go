package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// Repository exposes order snapshot persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	FindForUser(ctx context.Context, userID, orderID int64) (*models.Order, error)
}
