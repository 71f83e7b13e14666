package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/bookstore-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
)

const defaultOperationTimeout = 5 * time.Second

// Service exposes read access to a user's order history.
type Service interface {
	List(ctx context.Context, userID int64) ([]OrderDTO, error)
	Get(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
}

type service struct {
	repo    Repository
	timeout time.Duration
}

func NewService(repo Repository, timeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &service{repo: repo, timeout: timeout}, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]OrderDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, db.OperationError(err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, db.OperationError(err, "get order")
	}
	return FromModel(order), nil
}
