package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/events"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/handler"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/database"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	publisher, err := events.NewInventoryPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	notifyPublisher, err := events.NewNotificationPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create notification publisher")
	}
	notifier := service.NewAMQPNotifier(notifyPublisher, log)

	// Initialize repositories
	medicineRepo := repository.NewMedicineRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	consumptionRepo := repository.NewConsumptionRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	// Initialize services
	alertEngine := service.NewAlertEngine(medicineRepo, batchRepo, alertRepo, roleRepo, publisher, notifier, cfg.Alerts, log)
	inventoryService := service.NewInventoryService(medicineRepo, batchRepo, consumptionRepo, alertRepo, roleRepo, alertEngine, db, publisher, cfg.Alerts, log)
	forecastService := service.NewForecastService(medicineRepo, batchRepo, consumptionRepo, roleRepo, cfg.Forecast, log)
	userService := service.NewUserService(roleRepo, publisher, log)

	// Initialize handlers
	medicineHandler := handler.NewMedicineHandler(inventoryService, log)
	batchHandler := handler.NewBatchHandler(inventoryService, log)
	consumptionHandler := handler.NewConsumptionHandler(inventoryService, log)
	forecastHandler := handler.NewForecastHandler(forecastService, log)
	alertHandler := handler.NewAlertHandler(alertEngine, log)
	userHandler := handler.NewUserHandler(userService, log)
	dashboardHandler := handler.NewDashboardHandler(inventoryService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the background alert evaluation scheduler
	scheduler := service.NewEvalScheduler(alertEngine, cfg.Alerts.EvalInterval, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httputil.Principal(cfg.JWT.Secret, cfg.JWT.Issuer, log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		// Medicine catalog
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", medicineHandler.List)
			r.Post("/", medicineHandler.Create)
			r.Get("/{id}", medicineHandler.Get)
			r.Put("/{id}", medicineHandler.Update)
			r.Patch("/{id}/thresholds", medicineHandler.UpdateThresholds)
			r.Delete("/{id}", medicineHandler.Delete)
		})

		// Batches and stock
		r.Route("/medicines/{medicineID}/batches", func(r chi.Router) {
			r.Get("/", batchHandler.List)
			r.Post("/", batchHandler.Create)
		})
		r.Route("/batches", func(r chi.Router) {
			r.Get("/{id}", batchHandler.Get)
			r.Put("/{id}", batchHandler.Update)
			r.Post("/{id}/adjust", batchHandler.AdjustQuantity)
			r.Delete("/{id}", batchHandler.Delete)
		})

		// Consumption
		r.Route("/medicines/{medicineID}/consumption", func(r chi.Router) {
			r.Get("/", consumptionHandler.List)
			r.Post("/", consumptionHandler.Record)
		})

		// Forecasts
		r.Get("/forecasts", forecastHandler.List)
		r.Get("/medicines/{medicineID}/forecast", forecastHandler.Get)

		// Alerts
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.List)
			r.Get("/unread-count", alertHandler.UnreadCount)
			r.Get("/{id}", alertHandler.Get)
			r.Put("/{id}/read", alertHandler.MarkRead)
			r.Put("/{id}/resolve", alertHandler.Resolve)
			r.Delete("/{id}", alertHandler.Dismiss)
		})
		r.Post("/medicines/{medicineID}/evaluate", alertHandler.Evaluate)

		// User role management
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Put("/{id}/role", userHandler.AssignRole)
			r.Delete("/{id}/role", userHandler.RemoveRole)
		})

		// Dashboard
		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop the scheduler
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
