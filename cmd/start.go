package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"integrity-service/core/loader"
	"integrity-service/core/logger"
	"integrity-service/core/metrics"
	"integrity-service/core/middleware/auth"
	"integrity-service/core/middleware/rayid"
	"integrity-service/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "integrity-service/docs/swagger"
)

// @title Integrity Service API
// @version 1.0
// @description API for tracking the integrity of replicated collections.
// @host localhost:8080
// @BasePath /

const metricsPath = "/metrics"

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the integrity server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Metrics registry; the pillar collector is attached once the cache exists
		reg := metrics.NewRegistry()
		recorder := metrics.NewRecorder(reg)

		// 2. Configuration, logger, store, engine and service
		rt, err := bootstrap(recorder)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer rt.Close()
		logg := rt.log
		zap.ReplaceGlobals(logg)

		reg.MustRegister(metrics.NewPillarCollector(rt.cache, 10*time.Second, logg))

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			Immutable:             true,
			BodyLimit:             rt.cfg.Server.BodyLimit(),
			ReadTimeout:           rt.cfg.Server.ReadTimeout(),
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(integrity.NewFeature(rt.service))

		// Middleware: RayID first so every log line carries it
		app.Use(rayid.New())
		app.Use(logger.Middleware(logg))

		// Swagger documentation and metrics are public
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get(metricsPath, metrics.Handler(reg))

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
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
