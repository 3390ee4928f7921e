// Package app wires the storefront together: configuration, storage, search,
// HTTP surface, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/olivere/elastic/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mybooks/storefront/internal/domain/cart"
	"github.com/mybooks/storefront/internal/domain/order"
	"github.com/mybooks/storefront/internal/handler"
	"github.com/mybooks/storefront/internal/rediscart"
	"github.com/mybooks/storefront/internal/repository"
	"github.com/mybooks/storefront/internal/search"
	"github.com/mybooks/storefront/pkg/health"
	"github.com/mybooks/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis for the fast cart.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}

	// Elasticsearch for catalog search.
	es, err := elastic.NewClient(
		elastic.SetURL(cfg.Elastic.URL),
		elastic.SetSniff(false),
	)
	if err != nil {
		return errors.Wrap(err, "create elastic client")
	}
	defer es.Stop()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck("postgres", pool.Ping))
	healthSvc.AddReadinessCheck("redis", 5*time.Second, health.PingCheck("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))
	healthSvc.AddReadinessCheck("elastic", 5*time.Second, health.PingCheck("elastic", func(ctx context.Context) error {
		_, _, err := es.Ping(cfg.Elastic.URL).Do(ctx)
		return err
	}))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc-pause", time.Second, health.GCMaxPauseCheck(500*time.Millisecond))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	imageRepo := repository.NewImageRepository(pool)
	deliveryRuleRepo := repository.NewDeliveryRuleRepository(pool)
	wrapRepo := repository.NewWrapRepository(pool)
	returnRuleRepo := repository.NewReturnRuleRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	orderDetailRepo := repository.NewOrderDetailRepository(pool)
	cartStore := repository.NewCartStore(pool)
	fastCart := rediscart.NewStore(rdb)
	bookIndex := search.NewBookIndex(es, cfg.Elastic.BookIndex)

	// Domain services.
	orderService := order.NewService(orderRepo, orderDetailRepo, userRepo, deliveryRuleRepo)
	detailService := order.NewDetailService(orderDetailRepo, orderRepo, bookRepo, couponRepo, wrapRepo)
	cartSyncer := cart.NewSyncer(cartStore, fastCart, userRepo, bookRepo, imageRepo)

	// HTTP surface: gin for the API, plain mux for health endpoints.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	h := handler.New(orderService, detailService, cartSyncer, bookRepo, bookIndex,
		deliveryRuleRepo, wrapRepo, returnRuleRepo)
	h.Routes(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", engine)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-User-Id"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
