package checkout

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/internal/books"
	"github.com/angelmondragon/bookstore-backend/internal/cart"
	"github.com/angelmondragon/bookstore-backend/internal/orders"
	"github.com/angelmondragon/bookstore-backend/pkg/db"
	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/metrics"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox/payloads"
)

const (
	defaultOperationTimeout = 5 * time.Second
	orderCartConstraint     = "ux_orders_cart_id"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// stockCache is told which books changed stock after a commit.
type stockCache interface {
	Invalidate(ids ...int64)
}

// Service finalizes a user's open cart into an order.
type Service interface {
	ConfirmOrder(ctx context.Context, userID int64) (*orders.OrderDTO, error)
}

// ServiceParams bundles the checkout dependencies.
type ServiceParams struct {
	DB               txRunner
	Carts            cart.CartRepository
	Books            *books.Repository
	Orders           orders.Repository
	Outbox           outbox.Emitter
	Cache            stockCache
	Metrics          *metrics.OperationMetrics
	Logger           *logger.Logger
	OperationTimeout time.Duration
}

type service struct {
	tx      txRunner
	carts   cart.CartRepository
	books   *books.Repository
	orders  orders.Repository
	outbox  outbox.Emitter
	cache   stockCache
	metrics *metrics.OperationMetrics
	logg    *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	timeout := params.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &service{
		tx:      params.DB,
		carts:   params.Carts,
		books:   params.Books,
		orders:  params.Orders,
		outbox:  params.Outbox,
		cache:   params.Cache,
		metrics: params.Metrics,
		logg:    params.Logger,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// ConfirmOrder moves the open cart to ORDERED. Stock for every line is
// decremented, an order snapshot is written and order_confirmed is queued, all
// in one transaction. Any failure leaves the cart open and stock untouched.
func (s *service) ConfirmOrder(ctx context.Context, userID int64) (dto *orders.OrderDTO, err error) {
	defer func(started time.Time) { s.metrics.Observe("checkout.confirm", started, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		order   *models.Order
		bookIDs []int64
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		bookRepo := s.books.WithTx(tx)

		current, err := s.lockOpenCart(ctx, carts, userID)
		if err != nil {
			return err
		}

		items, err := carts.ListItems(ctx, current.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 || current.TotalQuantity == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		lines := make([]models.OrderLine, 0, len(items))
		for _, item := range items {
			book, err := bookRepo.FindByIDForUpdate(ctx, item.BookID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d no longer exists", item.BookID))
				}
				return err
			}
			ok, err := bookRepo.DecrementStock(ctx, book.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return cart.InsufficientStockError(book, item.Quantity)
			}
			lines = append(lines, models.OrderLine{
				BookID:     book.ID,
				BookName:   book.Name,
				BookAuthor: book.Author,
				UnitPrice:  item.Price / item.Quantity,
				Quantity:   item.Quantity,
				Price:      item.Price,
			})
			bookIDs = append(bookIDs, book.ID)
		}

		confirmedAt := s.now().UTC()
		created := &models.Order{
			CartID:        current.ID,
			UserID:        userID,
			TotalPrice:    current.TotalPrice,
			TotalQuantity: current.TotalQuantity,
			Lines:         lines,
		}
		if err := s.orders.WithTx(tx).Create(ctx, created); err != nil {
			if db.IsUniqueViolation(err, orderCartConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart already ordered")
			}
			return err
		}

		closed, err := carts.MarkOrdered(ctx, current.ID, confirmedAt)
		if err != nil {
			return err
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already ordered")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			OccurredAt:    confirmedAt,
			Data:          orderConfirmedPayload(created, confirmedAt),
		}); err != nil {
			return err
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, db.OperationError(err, "confirm order")
	}

	if s.cache != nil {
		s.cache.Invalidate(bookIDs...)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    order.ID,
			"cart_id":     order.CartID,
			"total_price": order.TotalPrice,
		})
		s.logg.Info(s.logg.WithUserID(logCtx, userID), "order confirmed")
	}
	return orders.FromModel(order), nil
}

func (s *service) lockOpenCart(ctx context.Context, carts cart.CartRepository, userID int64) (*models.Cart, error) {
	current, err := carts.LockOpenCart(ctx, userID)
	if err == nil {
		return current, nil
	}
	if !db.IsNotFound(err) {
		return nil, err
	}
	hadCart, err := carts.HasAnyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hadCart {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart already ordered")
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
}

func orderConfirmedPayload(order *models.Order, at time.Time) payloads.OrderConfirmedEvent {
	lines := make([]payloads.OrderLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, payloads.OrderLine{
			BookID:     l.BookID,
			BookName:   l.BookName,
			BookAuthor: l.BookAuthor,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	return payloads.OrderConfirmedEvent{
		OrderID:       order.ID,
		CartID:        order.CartID,
		UserID:        order.UserID,
		TotalPrice:    order.TotalPrice,
		TotalQuantity: order.TotalQuantity,
		Lines:         lines,
		ConfirmedAt:   at,
	}
}
