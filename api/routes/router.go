package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miguelgarza/comanda-backend/api/controllers"
	"github.com/miguelgarza/comanda-backend/api/middleware"
	ordersvc "github.com/miguelgarza/comanda-backend/internal/orders"
	productsvc "github.com/miguelgarza/comanda-backend/internal/products"
	reservationsvc "github.com/miguelgarza/comanda-backend/internal/reservations"
	tablesvc "github.com/miguelgarza/comanda-backend/internal/tables"
	"github.com/miguelgarza/comanda-backend/pkg/config"
	"github.com/miguelgarza/comanda-backend/pkg/db"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
	"github.com/miguelgarza/comanda-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	reservationService *reservationsvc.Service,
	tableService *tablesvc.Service,
	orderService *ordersvc.Service,
	productService *productsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.ReservationList(reservationService, logg))
			r.Post("/", controllers.ReservationCreate(reservationService, logg))
			r.Get("/{reservationId}", controllers.ReservationDetail(reservationService, logg))
			r.Patch("/{reservationId}", controllers.ReservationUpdate(reservationService, logg))
			r.Post("/{reservationId}/status", controllers.ReservationUpdateStatus(reservationService, logg))
			r.Delete("/{reservationId}", controllers.ReservationDelete(reservationService, logg))
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", controllers.TableList(tableService, logg))
			r.Post("/", controllers.TableCreate(tableService, logg))
			r.Get("/{tableId}", controllers.TableDetail(tableService, logg))
			r.Post("/{tableId}/status", controllers.TableSetStatus(tableService, logg))
			r.Post("/{tableId}/sync", controllers.TableSync(tableService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Post("/", controllers.OrderOpen(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
			r.Post("/{orderId}/items", controllers.OrderAddItem(orderService, logg))
			r.Post("/{orderId}/status", controllers.OrderUpdateStatus(orderService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productService, logg))
		})
	})

	return r
}
