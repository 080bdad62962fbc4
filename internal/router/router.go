package router

import (
	"net/http"
	"time"

	"b2b-quote/internal/cache"
	"b2b-quote/internal/handler"
	"b2b-quote/internal/metrics"
	"b2b-quote/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	RFQ     *handler.RFQHandler
	Quote   *handler.QuoteHandler
	Pricing *handler.PricingHandler
	Cart    *handler.CartHandler
	Health  *handler.HealthHandler
}

// Options configures the middleware stack.
type Options struct {
	AllowedOrigins []string
	Authenticator  middleware.Authenticator
	// Idempotency may be nil, in which case Idempotency-Key headers are ignored.
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *metrics.Metrics
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> Metrics -> CORS
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Metrics(opts.Metrics),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/health", h.Health.Health)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL, logger)
	authenticated := middleware.Authenticate(opts.Authenticator, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/profile", h.Auth.Profile)
			r.Get("/validate", h.Auth.Validate)
			r.Post("/logout", h.Auth.Logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Route("/api/rfq", func(r chi.Router) {
			r.With(idempotent).Post("/", h.RFQ.Create)
			r.Get("/", h.RFQ.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.RFQ.GetByID)
				r.Post("/quotes", h.RFQ.AddQuote)
				r.Post("/quotes/{quoteId}/accept", h.RFQ.AcceptQuote)
				r.Post("/quotes/{quoteId}/counter", h.RFQ.CounterOffer)
				r.Post("/reject", h.RFQ.Reject)
				r.Post("/documents", h.RFQ.AttachDocument)
			})
		})

		r.Route("/api/quotes", func(r chi.Router) {
			r.Get("/", h.Quote.List)
			r.Get("/{rfqId}", h.Quote.GetByRFQ)
		})

		r.Get("/api/pricing/{productId}", h.Pricing.Get)

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.With(idempotent).Post("/", h.Cart.AddItem)
			r.Delete("/", h.Cart.Clear)
			r.With(idempotent).Post("/submit", h.Cart.Submit)
			r.Put("/{id}", h.Cart.UpdateQuantity)
			r.Put("/{id}/price", h.Cart.SetCustomPrice)
			r.Delete("/{id}", h.Cart.RemoveItem)
		})
	})

	return r
}
