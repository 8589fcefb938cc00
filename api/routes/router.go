package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paytaksi/paytaksi-backend/api/controllers"
	"github.com/paytaksi/paytaksi-backend/api/middleware"
	"github.com/paytaksi/paytaksi-backend/internal/drivers"
	"github.com/paytaksi/paytaksi-backend/internal/notifications"
	"github.com/paytaksi/paytaksi-backend/internal/rides"
	"github.com/paytaksi/paytaksi-backend/internal/wallet"
	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/pubsub"
	"github.com/paytaksi/paytaksi-backend/pkg/redis"
)

const (
	mutationRateLimit  = 60
	mutationRateWindow = time.Minute
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	gatherer prometheus.Gatherer,
	driversService drivers.Service,
	ridesService rides.Service,
	walletService wallet.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Admin-Id"},
			MaxAge:         300,
		}),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(redisClient, logg, mutationRateLimit, mutationRateWindow))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/drivers", func(r chi.Router) {
			r.Post("/", controllers.RegisterDriver(driversService, logg))

			r.Route("/{driverId}", func(r chi.Router) {
				r.Get("/", controllers.DriverProfile(driversService, logg))
				r.Post("/online", controllers.DriverSetOnline(driversService, logg))
				r.Post("/position", controllers.DriverUpdatePosition(driversService, logg))

				r.Get("/offers", controllers.DriverOffers(ridesService, logg))
				r.Post("/offers/{offerId}/accept", controllers.AcceptOffer(ridesService, logg))
				r.Post("/offers/{offerId}/decline", controllers.DeclineOffer(ridesService, logg))

				r.Get("/rides", controllers.DriverRides(ridesService, logg))
				r.Post("/rides/{rideId}/start", controllers.StartRide(ridesService, logg))
				r.Post("/rides/{rideId}/complete", controllers.CompleteRide(ridesService, logg))

				r.Get("/wallet/balance", controllers.DriverBalance(walletService, logg))
				r.Get("/wallet/ledger", controllers.DriverLedger(walletService, logg))
				r.Get("/wallet/topups", controllers.DriverTopups(walletService, logg))
				r.Post("/wallet/topups", controllers.RequestTopup(walletService, logg))
			})
		})

		r.Route("/passengers/{passengerId}/rides", func(r chi.Router) {
			r.Post("/", controllers.RequestRide(ridesService, logg))
			r.Get("/", controllers.PassengerRides(ridesService, logg))
			r.Get("/{rideId}", controllers.RideDetail(ridesService, logg))
			r.Post("/{rideId}/cancel", controllers.PassengerCancelRide(ridesService, logg))
		})

		r.Route("/recipients/{recipientId}/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(redisClient, logg, mutationRateLimit, mutationRateWindow))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/drivers/{driverId}/approval", controllers.AdminSetDriverApproval(driversService, logg))
		r.Post("/drivers/{driverId}/adjust", controllers.AdminAdjustBalance(walletService, logg))
		r.Get("/drivers/{driverId}/balance-audit", controllers.AdminBalanceAudit(walletService, logg))

		r.Get("/topups/pending", controllers.AdminPendingTopups(walletService, logg))
		r.Post("/topups/{topupId}/decide", controllers.AdminDecideTopup(walletService, logg))

		r.Post("/rides/{rideId}/cancel", controllers.AdminCancelRide(ridesService, logg))
		r.Post("/rides/{rideId}/redispatch", controllers.AdminRedispatchRide(ridesService, logg))
	})

	return r
}
