package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/apperror"
	"github.com/harentsoaR/doctors-portal-api/internal/config"
	"github.com/harentsoaR/doctors-portal-api/internal/handlers"
	"github.com/harentsoaR/doctors-portal-api/internal/logger"
	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/services"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "doctors-portal-api",
		Short:         "Doctors portal booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), serve)
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), serve)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the unique indexes on users and bookings, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(ctx context.Context, _ *config.Config, db *store.Mongo) error {
				if err := db.EnsureIndexes(ctx); err != nil {
					return err
				}
				log.Info().Msg("indexes are in place")
				return nil
			})
		},
	})
	return root
}

// run loads configuration, connects to MongoDB and hands both to fn.
func run(ctx context.Context, fn func(context.Context, *config.Config, *store.Mongo) error) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, relying on environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}
	log.Info().
		Str("database", cfg.MongoDatabase).
		Str("port", cfg.Port).
		Dur("token_ttl", cfg.TokenTTL).
		Msg("configuration loaded")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to MongoDB")
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("MongoDB disconnect")
		}
	}()

	db := store.New(client.Database(cfg.MongoDatabase), cfg.DBTimeout)
	if err := db.Ping(connectCtx); err != nil {
		log.Error().Err(err).Msg("MongoDB is unreachable")
		return err
	}
	log.Info().Msg("Successfully connected to MongoDB!")

	return fn(ctx, cfg, db)
}

func serve(ctx context.Context, cfg *config.Config, db *store.Mongo) error {
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
		return err
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	notificationSvc := services.NewNotificationService(cfg.TextbeltAPIKey)

	h := handlers.NewHandler(db, tokens, notificationSvc, handlers.Options{
		DefaultDate: cfg.DefaultAvailabilityDate,
		BcryptCost:  cfg.BcryptCost,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	r := newRouter(cfg, log.Logger, metrics)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	h.RegisterRoutes(r, middleware.AuthMiddleware(tokens))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("doctors portal running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, l zerolog.Logger, metrics *middleware.Metrics) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(l),
		middleware.Recovery(l),
		metrics.Middleware(),
	)

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderXRequestID},
		ExposeHeaders: []string{middleware.HeaderXRequestID},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	// CORS runs before the limiter so throttled responses stay readable by browsers.
	r.Use(cors.New(corsCfg))

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute).RateLimit())
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, apperror.NotFound("Route"))
	})

	return r
}
