package cart

import (
	"context"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// FindItem returns the line for the book in the cart.
func (r *Repository) FindItem(ctx context.Context, cartID, bookID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND book_id = ?", cartID, bookID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItem overwrites quantity and price of an existing line.
func (r *Repository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity": item.Quantity,
			"price":    item.Price,
		}).Error
}

// ListItems returns the cart lines ordered by book id, which is also the lock
// order used at checkout.
func (r *Repository) ListItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("book_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
