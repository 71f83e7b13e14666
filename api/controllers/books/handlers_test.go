package books

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bookstore-backend/api/middleware"
	booksvc "github.com/angelmondragon/bookstore-backend/internal/books"
	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
)

type stubBookService struct {
	book      *booksvc.BookDTO
	books     []booksvc.BookDTO
	err       error
	lastActor booksvc.Actor
	lastID    int64
	lastQty   int64
	lastPatch booksvc.UpdateBookRequest
}

func (s *stubBookService) Create(ctx context.Context, actor booksvc.Actor, req booksvc.CreateBookRequest) (*booksvc.BookDTO, error) {
	s.lastActor = actor
	return s.book, s.err
}

func (s *stubBookService) List(ctx context.Context) ([]booksvc.BookDTO, error) {
	return s.books, s.err
}

func (s *stubBookService) Get(ctx context.Context, id int64) (*booksvc.BookDTO, error) {
	s.lastID = id
	return s.book, s.err
}

func (s *stubBookService) Update(ctx context.Context, actor booksvc.Actor, id int64, req booksvc.UpdateBookRequest) (*booksvc.BookDTO, error) {
	s.lastActor, s.lastID, s.lastPatch = actor, id, req
	return s.book, s.err
}

func (s *stubBookService) UpdateQuantity(ctx context.Context, actor booksvc.Actor, id, quantity int64) (*booksvc.BookDTO, error) {
	s.lastActor, s.lastID, s.lastQty = actor, id, quantity
	return s.book, s.err
}

func (s *stubBookService) Delete(ctx context.Context, actor booksvc.Actor, id int64) error {
	s.lastActor, s.lastID = actor, id
	return s.err
}

func withBookID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("bookId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func asUser(req *http.Request, userID int64, superuser bool) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID)
	return req.WithContext(middleware.WithSuperuser(ctx, superuser))
}

func TestCreateReturns201(t *testing.T) {
	svc := &stubBookService{book: &booksvc.BookDTO{ID: 1, Name: "Dune", Price: 999, PriceDisplay: "9.99"}}
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"Dune","author":"Herbert","price":999,"quantity":3}`))
	req = asUser(req, 5, true)
	rec := httptest.NewRecorder()

	Create(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, booksvc.Actor{UserID: 5, Superuser: true}, svc.lastActor)

	var envelope struct {
		Data booksvc.BookDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, "9.99", envelope.Data.PriceDisplay)
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubBookService{}
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"Dune","author":"Herbert","price":1,"quantity":1,"user_id":9}`))
	rec := httptest.NewRecorder()

	Create(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.lastActor.UserID)
}

func TestCreateRejectsOutOfRangePrice(t *testing.T) {
	svc := &stubBookService{}
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"Dune","author":"Herbert","price":4611686018427387905,"quantity":4}`))
	req = asUser(req, 5, true)
	rec := httptest.NewRecorder()

	Create(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be at most 10000000000")
	assert.Zero(t, svc.lastActor.UserID)
}

func TestUpdateRejectsOutOfRangeQuantity(t *testing.T) {
	svc := &stubBookService{}
	req := withBookID(httptest.NewRequest(http.MethodPut, "/books/3", strings.NewReader(`{"quantity":1000001}`)), "3")
	req = asUser(req, 5, true)
	rec := httptest.NewRecorder()

	Update(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.lastID)
}

func TestGetRejectsBadID(t *testing.T) {
	req := withBookID(httptest.NewRequest(http.MethodGet, "/books/abc", nil), "abc")
	rec := httptest.NewRecorder()

	Get(&stubBookService{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMapsNotFound(t *testing.T) {
	svc := &stubBookService{err: pkgerrors.New(pkgerrors.CodeNotFound, "book not found")}
	req := withBookID(httptest.NewRequest(http.MethodGet, "/books/7", nil), "7")
	rec := httptest.NewRecorder()

	Get(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(7), svc.lastID)
}

func TestUpdateQuantityAcceptsZero(t *testing.T) {
	svc := &stubBookService{book: &booksvc.BookDTO{ID: 3}}
	req := httptest.NewRequest(http.MethodPatch, "/books/3/quantity", strings.NewReader(`{"quantity":0}`))
	req = withBookID(asUser(req, 5, true), "3")
	rec := httptest.NewRecorder()

	UpdateQuantity(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), svc.lastID)
	assert.Zero(t, svc.lastQty)
}

func TestUpdateQuantityRequiresValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/books/3/quantity", strings.NewReader(`{}`))
	req = withBookID(req, "3")
	rec := httptest.NewRecorder()

	UpdateQuantity(&stubBookService{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePassesPartialPatch(t *testing.T) {
	svc := &stubBookService{book: &booksvc.BookDTO{ID: 3}}
	req := httptest.NewRequest(http.MethodPut, "/books/3", strings.NewReader(`{"price":1500}`))
	req = withBookID(asUser(req, 5, true), "3")
	rec := httptest.NewRecorder()

	Update(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastPatch.Price)
	assert.Equal(t, int64(1500), *svc.lastPatch.Price)
	assert.Nil(t, svc.lastPatch.Name)
}

func TestDeleteForbidden(t *testing.T) {
	svc := &stubBookService{err: pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may change this book")}
	req := withBookID(asUser(httptest.NewRequest(http.MethodDelete, "/books/3", nil), 6, false), "3")
	rec := httptest.NewRecorder()

	Delete(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, booksvc.Actor{UserID: 6}, svc.lastActor)
}
