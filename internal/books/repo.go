package books

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
)

// Repository persists catalog entries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByIDForShare reads the book under a shared lock so its price and stock
// cannot change until the surrounding transaction ends.
func (r *Repository) FindByIDForShare(ctx context.Context, id int64) (*models.Book, error) {
	return r.findLocked(ctx, id, clause.Locking{Strength: "SHARE"})
}

// FindByIDForUpdate reads the book under an exclusive row lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	return r.findLocked(ctx, id, clause.Locking{Strength: "UPDATE"})
}

func (r *Repository) findLocked(ctx context.Context, id int64, lock clause.Locking) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Clauses(lock).
		Where("id = ?", id).
		First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Book, error) {
	var rows []models.Book
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// Update writes the given column set. Callers pass an allow-listed map.
func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(columns).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id, quantity int64) error {
	return r.Update(ctx, id, map[string]any{"quantity": quantity})
}

// DecrementStock subtracts n from the stock only when enough is available. It
// reports false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, id, n int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND quantity >= ?", id, n).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}

// ListCartItems returns every cart line that references the book.
func (r *Repository) ListCartItems(ctx context.Context, bookID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("cart_id ASC").
		Find(&items).Error
	return items, err
}

// LockCarts takes row locks on the carts in ascending id order.
func (r *Repository) LockCarts(ctx context.Context, cartIDs []int64) error {
	if len(cartIDs) == 0 {
		return nil
	}
	var carts []models.Cart
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", cartIDs).
		Order("id ASC").
		Find(&carts).Error
}

// RemoveCartItems subtracts each item from its cart totals and deletes the items.
func (r *Repository) RemoveCartItems(ctx context.Context, items []models.CartItem) error {
	conn := r.db.WithContext(ctx)
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if err := conn.Model(&models.Cart{}).
			Where("id = ?", item.CartID).
			Updates(map[string]any{
				"total_price":    gorm.Expr("total_price - ?", item.Price),
				"total_quantity": gorm.Expr("total_quantity - ?", item.Quantity),
			}).Error; err != nil {
			return err
		}
		ids = append(ids, item.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return conn.Where("id IN ?", ids).Delete(&models.CartItem{}).Error
}
