package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/bookstore-backend/api/controllers"
	bookcontrollers "github.com/angelmondragon/bookstore-backend/api/controllers/books"
	cartcontrollers "github.com/angelmondragon/bookstore-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/bookstore-backend/api/controllers/orders"
	"github.com/angelmondragon/bookstore-backend/api/middleware"
	"github.com/angelmondragon/bookstore-backend/internal/auth"
	"github.com/angelmondragon/bookstore-backend/internal/books"
	"github.com/angelmondragon/bookstore-backend/internal/cart"
	"github.com/angelmondragon/bookstore-backend/internal/checkout"
	"github.com/angelmondragon/bookstore-backend/internal/orders"
	"github.com/angelmondragon/bookstore-backend/pkg/auth/session"
	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (*session.Rotated, error)
	Revoke(context.Context, string) error
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth     auth.Service
	Register auth.RegisterService
	Books    books.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	metricsHandler http.Handler,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var (
		rateStore middleware.RateLimitStore
		idemStore redis.IdempotencyStore
		ready     = map[string]controllers.Pinger{"db": dbP}
	)
	if redisClient != nil {
		rateStore = redisClient
		idemStore = redisClient
		ready["redis"] = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, ready, logg))
	})

	if cfg.Metrics.Enabled && metricsHandler != nil {
		r.Handle(cfg.Metrics.Path, metricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(svc.Register, logg))
		r.Get("/verify", controllers.AuthVerify(svc.Register, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	authenticated := middleware.Auth(cfg.JWT, sessionManager, logg)
	idempotent := middleware.Idempotency(idemStore, logg)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", bookcontrollers.List(svc.Books, logg))
		r.Get("/{bookId}", bookcontrollers.Get(svc.Books, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.With(middleware.RequireSuperuser(logg), idempotent).Post("/", bookcontrollers.Create(svc.Books, logg))
			r.Put("/{bookId}", bookcontrollers.Update(svc.Books, logg))
			r.Patch("/{bookId}/quantity", bookcontrollers.UpdateQuantity(svc.Books, logg))
			r.Delete("/{bookId}", bookcontrollers.Delete(svc.Books, logg))
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/add", cartcontrollers.Add(svc.Cart, logg))
		r.Get("/get", cartcontrollers.Summary(svc.Cart, logg))
		r.Get("/get/{cartId}", cartcontrollers.Items(svc.Cart, logg))
		r.Get("/confirm", cartcontrollers.Confirm(svc.Checkout, logg))
		// idempotency resolves the matched pattern, so it wraps the endpoint rather than the subrouter
		r.With(idempotent).Post("/confirm", cartcontrollers.Confirm(svc.Checkout, logg))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", ordercontrollers.List(svc.Orders, logg))
		r.Get("/{orderId}", ordercontrollers.Detail(svc.Orders, logg))
	})

	return r
}
