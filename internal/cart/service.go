package cart

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/internal/books"
	"github.com/angelmondragon/bookstore-backend/pkg/db"
	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/metrics"
)

const defaultOperationTimeout = 5 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the cart aggregate operations.
type Service interface {
	AddOrUpdateItem(ctx context.Context, userID, bookID, quantity int64) (*CartDTO, error)
	GetCartSummary(ctx context.Context, userID int64) ([]CartSummary, error)
	GetCartItems(ctx context.Context, userID, cartID int64) ([]CartItemDTO, error)
}

// ServiceParams bundles the cart dependencies.
type ServiceParams struct {
	Repo             CartRepository
	Books            *books.Repository
	DB               txRunner
	Metrics          *metrics.OperationMetrics
	Logger           *logger.Logger
	OperationTimeout time.Duration
}

type service struct {
	repo    CartRepository
	books   *books.Repository
	tx      txRunner
	metrics *metrics.OperationMetrics
	logg    *logger.Logger
	timeout time.Duration
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	timeout := params.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &service{
		repo:    params.Repo,
		books:   params.Books,
		tx:      params.DB,
		metrics: params.Metrics,
		logg:    params.Logger,
		timeout: timeout,
	}, nil
}

// AddOrUpdateItem sets the quantity of a book in the user's open cart. An existing
// line is replaced rather than incremented. Stock is checked but not reserved.
func (s *service) AddOrUpdateItem(ctx context.Context, userID, bookID, quantity int64) (dto *CartDTO, err error) {
	defer func(started time.Time) { s.metrics.Observe("cart.add", started, err) }(time.Now())

	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if bookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var cart *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.repo.WithTx(tx)

		current, err := carts.EnsureOpenCart(ctx, userID)
		if err != nil {
			return err
		}

		book, err := s.books.WithTx(tx).FindByIDForShare(ctx, bookID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return err
		}
		if quantity > book.Quantity {
			return InsufficientStockError(book, quantity)
		}

		linePrice, ok := mulAmount(quantity, book.Price)
		if !ok {
			return errAmountOutOfRange()
		}

		item, err := carts.FindItem(ctx, current.ID, bookID)
		switch {
		case err == nil:
			current.TotalPrice -= item.Price
			current.TotalQuantity -= item.Quantity
			item.Quantity = quantity
			item.Price = linePrice
			if err := carts.UpdateItem(ctx, item); err != nil {
				return err
			}
		case db.IsNotFound(err):
			if err := carts.CreateItem(ctx, &models.CartItem{
				CartID:   current.ID,
				BookID:   bookID,
				Quantity: quantity,
				Price:    linePrice,
			}); err != nil {
				return err
			}
		default:
			return err
		}

		if current.TotalPrice, ok = addAmount(current.TotalPrice, linePrice); !ok {
			return errAmountOutOfRange()
		}
		if current.TotalQuantity, ok = addAmount(current.TotalQuantity, quantity); !ok {
			return errAmountOutOfRange()
		}
		if err := carts.SaveTotals(ctx, current); err != nil {
			return err
		}
		cart = current
		return nil
	})
	if err != nil {
		return nil, db.OperationError(err, "add item to cart")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"cart_id":  cart.ID,
			"book_id":  bookID,
			"quantity": quantity,
		})
		s.logg.Debug(logCtx, "cart item saved")
	}
	return FromModel(cart), nil
}

// GetCartSummary lists every cart of the user with its totals.
func (s *service) GetCartSummary(ctx context.Context, userID int64) (out []CartSummary, err error) {
	defer func(started time.Time) { s.metrics.Observe("cart.summary", started, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, db.OperationError(err, "load carts")
	}

	var quantity int64
	out = make([]CartSummary, 0, len(rows))
	for _, c := range rows {
		quantity += c.TotalQuantity
		out = append(out, CartSummary{
			CartID:    c.ID,
			Price:     c.TotalPrice,
			Quantity:  c.TotalQuantity,
			IsOrdered: c.IsOrdered,
		})
	}
	if len(out) == 0 || quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}
	return out, nil
}

// GetCartItems returns the lines of one cart owned by the user.
func (s *service) GetCartItems(ctx context.Context, userID, cartID int64) (out []CartItemDTO, err error) {
	defer func(started time.Time) { s.metrics.Observe("cart.items", started, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, db.OperationError(err, "load cart")
	}
	if c.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart belongs to another user")
	}

	items, err := s.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, db.OperationError(err, "load cart items")
	}
	out = make([]CartItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, itemFromModel(item))
	}
	return out, nil
}

// InsufficientStockError reports the available stock of book alongside the request.
func InsufficientStockError(book *models.Book, requested int64) error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("only %d copies of %q available", book.Quantity, book.Name),
	).WithDetails(map[string]any{
		"book_id":   book.ID,
		"available": book.Quantity,
		"requested": requested,
	})
}
