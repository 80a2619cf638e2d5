package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"account-audit/core/loader"
	"account-audit/core/logger"
	"account-audit/core/middleware/auth"
	"account-audit/core/middleware/rayid"
	"account-audit/feature/accounts"
	"account-audit/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "account-audit/docs/swagger"
)

// @title Account Audit API
// @version 1.0
// @description Audits archiver account state against the node stores.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the audit HTTP server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration and Logger
		cfg, logg, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if err := validateStores(cfg); err != nil {
			logg.Fatal("Invalid store configuration", zap.Error(err))
		}

		// 2. Initialize Storage (Optional)
		store := optionalStorage(cfg, logg)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.ReadTimeout(),
			WriteTimeout:          cfg.Server.WriteTimeout(),
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(accounts.NewFeature(newAccountService(cfg, cfg.Audit.CacheTTL(), store, logg)))
		mgr.Register(integrity.NewFeature(integrity.NewService(integrityOptions(cfg), store,
			cfg.Storage.Bucket, cfg.Audit.ReportPrefix, cfg.Storage.Region, logg)))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id attached
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		if cfg.Server.AuthEnabled() {
			app.Use(auth.New(cfg.Server.ApiKey))
		} else {
			logg.Warn("API key not set, requests are not authenticated")
		}

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
