package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/shipledger/ledger/internal/events"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/rating"
	"github.com/shipledger/ledger/internal/service/models/review"
	cancelorder "github.com/shipledger/ledger/internal/transport/http/cancel_order"
	"github.com/shipledger/ledger/internal/transport/http/company"
	completeorder "github.com/shipledger/ledger/internal/transport/http/complete_order"
	createorder "github.com/shipledger/ledger/internal/transport/http/create_order"
	getorder "github.com/shipledger/ledger/internal/transport/http/get_order"
	listorders "github.com/shipledger/ledger/internal/transport/http/list_orders"
	orderchanges "github.com/shipledger/ledger/internal/transport/http/order_changes"
	orderreviews "github.com/shipledger/ledger/internal/transport/http/order_reviews"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
	"github.com/shipledger/ledger/internal/transport/http/stats"
	streamevents "github.com/shipledger/ledger/internal/transport/http/stream_events"
	withdrawfunds "github.com/shipledger/ledger/internal/transport/http/withdraw_funds"
	"github.com/shipledger/ledger/pkg/http/middleware/trace"
	"github.com/shipledger/ledger/pkg/logger"
)

type service interface {
	CreateOrder(ctx context.Context, sender, recipient identity.Address, distanceKm uint64, cargoType string, price uint64) (order.Order, error)
	PayForOrder(ctx context.Context, caller identity.Address, orderID uint64, amount uint64) (order.Order, error)
	CompleteOrder(ctx context.Context, caller identity.Address, orderID uint64, comment string, rating int) (review.Review, error)
	CancelOrder(ctx context.Context, caller identity.Address, orderID uint64) (uint64, error)
	WithdrawCompanyFunds(ctx context.Context, caller identity.Address) (uint64, error)

	Order(ctx context.Context, id uint64) (order.Order, error)
	Orders(ctx context.Context) ([]order.Order, error)
	OrderCount(ctx context.Context) (uint64, error)
	OrderChanges(ctx context.Context, id uint64) ([]orderchange.Change, error)
	ReviewsByOrder(ctx context.Context, id uint64) ([]review.Review, error)
	ReviewCount(ctx context.Context) (uint64, error)
	AverageRating(ctx context.Context) (rating.Aggregate, error)
	CompanyAddress(ctx context.Context) (identity.Address, error)
	TreasuryBalance(ctx context.Context) (uint64, error)

	Bus() *events.Bus
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/", h.listOrders)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getOrder)
				r.Post("/pay", h.payOrder)
				r.Post("/complete", h.completeOrder)
				r.Post("/cancel", h.cancelOrder)
				r.Get("/changes", h.orderChanges)
				r.Get("/reviews", h.orderReviews)
			})
		})
		r.Route("/company", func(r chi.Router) {
			r.Get("/", h.company)
			r.Post("/withdraw", h.withdrawFunds)
		})
		r.Get("/stats", h.stats)
		r.Get("/events", h.streamEvents)
	})

	h.router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, viper.GetString("server.http.swagger_spec"))
	})
	h.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func (h *HTTPTransport) payOrder(w http.ResponseWriter, r *http.Request) {
	payorder.PayOrder(w, r, h.service)
}

func (h *HTTPTransport) completeOrder(w http.ResponseWriter, r *http.Request) {
	completeorder.CompleteOrder(w, r, h.service)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.service)
}

func (h *HTTPTransport) withdrawFunds(w http.ResponseWriter, r *http.Request) {
	withdrawfunds.WithdrawFunds(w, r, h.service)
}

func (h *HTTPTransport) orderChanges(w http.ResponseWriter, r *http.Request) {
	orderchanges.OrderChanges(w, r, h.service)
}

func (h *HTTPTransport) orderReviews(w http.ResponseWriter, r *http.Request) {
	orderreviews.OrderReviews(w, r, h.service)
}

func (h *HTTPTransport) stats(w http.ResponseWriter, r *http.Request) {
	stats.Stats(w, r, h.service)
}

func (h *HTTPTransport) company(w http.ResponseWriter, r *http.Request) {
	company.Company(w, r, h.service)
}

func (h *HTTPTransport) streamEvents(w http.ResponseWriter, r *http.Request) {
	streamevents.StreamEvents(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
