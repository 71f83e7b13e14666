package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/pkg/db"
	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/metrics"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox/payloads"
)

const defaultOperationTimeout = 5 * time.Second

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateBookRequest) (*BookDTO, error)
	List(ctx context.Context) ([]BookDTO, error)
	Get(ctx context.Context, id int64) (*BookDTO, error)
	Update(ctx context.Context, actor Actor, id int64, req UpdateBookRequest) (*BookDTO, error)
	UpdateQuantity(ctx context.Context, actor Actor, id, quantity int64) (*BookDTO, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the catalog dependencies.
type ServiceParams struct {
	Repo             *Repository
	DB               txRunner
	Outbox           outbox.Emitter
	Cache            *Cache
	Metrics          *metrics.OperationMetrics
	Logger           *logger.Logger
	OperationTimeout time.Duration
}

type service struct {
	repo    *Repository
	tx      txRunner
	outbox  outbox.Emitter
	cache   *Cache
	metrics *metrics.OperationMetrics
	logg    *logger.Logger
	timeout time.Duration
}

// NewService constructs a catalog service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	timeout := params.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &service{
		repo:    params.Repo,
		tx:      params.DB,
		outbox:  params.Outbox,
		cache:   params.Cache,
		metrics: params.Metrics,
		logg:    params.Logger,
		timeout: timeout,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateBookRequest) (dto *BookDTO, err error) {
	defer s.observe("books.create", time.Now(), &err)

	if !actor.Superuser {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only superusers can add books")
	}
	name := strings.TrimSpace(req.Name)
	author := strings.TrimSpace(req.Author)
	if name == "" || author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and author are required")
	}
	if req.Price < 0 || req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price and quantity must be non-negative")
	}
	if req.Price > MaxPrice || req.Quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price or quantity exceeds the supported range")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	book := &models.Book{
		Name:     name,
		Author:   author,
		Price:    req.Price,
		Quantity: req.Quantity,
		UserID:   actor.UserID,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, db.OperationError(err, "create book")
	}
	return FromModel(book), nil
}

func (s *service) List(ctx context.Context) (dtos []BookDTO, err error) {
	defer s.observe("books.list", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.OperationError(err, "list books")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no books found")
	}
	dtos = make([]BookDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id int64) (dto *BookDTO, err error) {
	defer s.observe("books.get", time.Now(), &err)

	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, db.OperationError(err, "get book")
	}
	dto = FromModel(book)
	s.cache.Add(dto)
	return dto, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id int64, req UpdateBookRequest) (dto *BookDTO, err error) {
	defer s.observe("books.update", time.Now(), &err)

	columns, err := updateColumns(req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, "update book", func(ctx context.Context, repo *Repository) error {
		return repo.Update(ctx, id, columns)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, actor Actor, id, quantity int64) (dto *BookDTO, err error) {
	defer s.observe("books.update_quantity", time.Now(), &err)

	if quantity < 0 || quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 0 and 1000000")
	}
	return s.mutate(ctx, actor, id, "update book quantity", func(ctx context.Context, repo *Repository) error {
		return repo.UpdateQuantity(ctx, id, quantity)
	})
}

// Delete removes the book. Cart lines that reference it are removed in the same
// transaction and their carts' totals are reduced accordingly.
func (s *service) Delete(ctx context.Context, actor Actor, id int64) (err error) {
	defer s.observe("books.delete", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		preview, err := repo.ListCartItems(ctx, id)
		if err != nil {
			return err
		}
		// carts before the book, matching the lock order of cart mutations
		if err := repo.LockCarts(ctx, cartIDs(preview)); err != nil {
			return err
		}

		book, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return err
		}
		if err := authorizeOwner(actor, book); err != nil {
			return err
		}

		items, err := repo.ListCartItems(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.RemoveCartItems(ctx, items); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookDeleted,
			AggregateType: enums.AggregateBook,
			AggregateID:   id,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Superuser: actor.Superuser},
			Data: payloads.BookDeletedEvent{
				BookID:          id,
				AffectedCartIDs: cartIDs(items),
			},
		})
	})
	if err != nil {
		return db.OperationError(err, "delete book")
	}
	s.cache.Invalidate(id)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "book_id", id), "book deleted")
	}
	return nil
}

func (s *service) mutate(ctx context.Context, actor Actor, id int64, op string, apply func(context.Context, *Repository) error) (*BookDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var updated *models.Book
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		book, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return err
		}
		if err := authorizeOwner(actor, book); err != nil {
			return err
		}
		if err := apply(ctx, repo); err != nil {
			return err
		}
		updated, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, db.OperationError(err, op)
	}
	s.cache.Invalidate(id)
	return FromModel(updated), nil
}

func (s *service) observe(operation string, started time.Time, errp *error) {
	s.metrics.Observe(operation, started, *errp)
}

func authorizeOwner(actor Actor, book *models.Book) error {
	if !actor.Superuser || book.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you do not own this book")
	}
	return nil
}

func updateColumns(req UpdateBookRequest) (map[string]any, error) {
	columns := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		columns["name"] = name
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		if author == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "author cannot be empty")
		}
		columns["author"] = author
	}
	if req.Price != nil {
		if *req.Price < 0 || *req.Price > MaxPrice {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be between 0 and 10000000000")
		}
		columns["price"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 || *req.Quantity > MaxQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 0 and 1000000")
		}
		columns["quantity"] = *req.Quantity
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	return columns, nil
}

func cartIDs(items []models.CartItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.CartID]; ok {
			continue
		}
		seen[item.CartID] = struct{}{}
		ids = append(ids, item.CartID)
	}
	return ids
}
