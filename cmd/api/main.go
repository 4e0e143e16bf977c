package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_bazar/configs"
	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/handlers"
	"github.com/anjiri1684/tutor_bazar/jobs"
	"github.com/anjiri1684/tutor_bazar/payments"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/anjiri1684/tutor_bazar/routes"
	"github.com/anjiri1684/tutor_bazar/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	settings := config.Load()
	config.InitLogger(settings)

	database.ConnectDB(settings.DatabaseURL)
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("🔥 Failed to migrate database", "error", err)
		os.Exit(1)
	}
	database.SeedAdmin(database.DB)

	rdb := database.ConnectRedis(settings.RedisAddr)
	stripeService := payments.NewStripeService(settings.StripeSecret, settings.ProviderTimeout, nil)
	confirmations := services.NewConfirmationService(
		stripeService,
		services.NewStores(database.DB),
		services.NewResultCache(rdb, settings.ConfirmationCacheTTL),
	)

	c := cron.New()
	if _, err := jobs.ScheduleReconciliationReport(c, settings.ReconcileReportSchedule, &queries.PaymentQueries{DB: database.DB}); err != nil {
		slog.Error("🔥 Invalid reconciliation report schedule", "schedule", settings.ReconcileReportSchedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	slog.Info("✅ Reconciliation report scheduled", "schedule", settings.ReconcileReportSchedule)

	app := fiber.New(fiber.Config{
		AppName:       settings.AppName,
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  settings.ClientDomain,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to " + settings.AppName + " API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Register(app, handlers.NewPaymentHandler(confirmations, stripeService, settings))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Shutting down")
		<-c.Stop().Done()
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("✅ Server is running", "port", settings.Port)
	if err := app.Listen(":" + settings.Port); err != nil {
		slog.Error("🔥 Server failed to start", "error", err)
		os.Exit(1)
	}
}
