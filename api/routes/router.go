package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/controllers"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/middleware"
	cartsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/cart"
	catalogsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/catalog"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/connectivity"
	shiftsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/shift"
	syncsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/sync"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	monitor *connectivity.Monitor,
	catalogService catalogsvc.Service,
	cartEngine *cartsvc.Engine,
	syncService syncsvc.Service,
	shiftService shiftsvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.Healthz(cfg, logg, dbP, monitor))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/catalog", func(r chi.Router) {
		r.Post("/sync", controllers.CatalogSync(catalogService, logg))
		r.Get("/search", controllers.CatalogSearch(catalogService, logg))
		r.Get("/sku/{sku}", controllers.CatalogBySKU(catalogService, logg))
	})

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", controllers.CartCreate(cartEngine, logg))
		r.Get("/", controllers.CartList(cartEngine, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartEngine, logg))
			r.Delete("/", controllers.CartRemove(cartEngine, logg))
			r.Post("/clear", controllers.CartClear(cartEngine, logg))

			r.Post("/lines", controllers.CartAddLine(cartEngine, catalogService, logg))
			r.Post("/bulk/confirm", controllers.CartBulkConfirm(cartEngine, logg))
			r.Post("/bulk/cancel", controllers.CartBulkCancel(cartEngine, logg))

			r.Route("/lines/{unitId}", func(r chi.Router) {
				r.Delete("/", controllers.CartLineRemove(cartEngine, logg))
				r.Post("/increment", controllers.CartLineIncrement(cartEngine, logg))
				r.Post("/decrement", controllers.CartLineDecrement(cartEngine, logg))
				r.Post("/wholesale", controllers.CartLineWholesale(cartEngine, logg))
				r.Put("/price", controllers.CartLinePrice(cartEngine, logg))
			})
		})
	})

	r.Route("/sales", func(r chi.Router) {
		r.Post("/", controllers.SaleSubmit(cartEngine, syncService, cfg.Terminal, logg))
		r.Post("/drain", controllers.SaleDrain(syncService, logg))
		r.Get("/pending", controllers.SalePending(syncService, logg))
	})

	r.Route("/shift", func(r chi.Router) {
		r.Get("/", controllers.ShiftCurrent(shiftService, logg))
		r.Post("/open", controllers.ShiftOpen(shiftService, logg))
		r.Post("/close", controllers.ShiftClose(shiftService, logg))
		r.Post("/movements", controllers.ShiftMovement(shiftService, logg))
	})

	return r
}
