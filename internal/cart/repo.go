package cart

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// EnsureOpenCart returns the user's open cart locked for update, inserting an
// empty one first when none exists. The insert targets the partial unique index
// on open carts, so racing callers end up on the same row.
func (r *Repository) EnsureOpenCart(ctx context.Context, userID int64) (*models.Cart, error) {
	fresh := &models.Cart{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "user_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "is_ordered = false"}}},
			DoNothing:   true,
		}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}
	return r.LockOpenCart(ctx, userID)
}

// LockOpenCart loads the user's open cart with a row lock.
func (r *Repository) LockOpenCart(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND is_ordered = ?", userID, false).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// HasAnyCart reports whether the user ever had a cart, open or ordered.
func (r *Repository) HasAnyCart(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListByUser returns every cart of the user, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Cart, error) {
	var rows []models.Cart
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// SaveTotals persists the cart's aggregate columns.
func (r *Repository) SaveTotals(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]any{
			"total_price":    cart.TotalPrice,
			"total_quantity": cart.TotalQuantity,
		}).Error
}

// MarkOrdered closes an open cart. It reports false when the cart was already ordered.
func (r *Repository) MarkOrdered(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND is_ordered = ?", id, false).
		Updates(map[string]any{
			"is_ordered": true,
			"ordered_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
