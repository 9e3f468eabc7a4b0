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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/controllers"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/routes"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/auth"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/bookings"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/checkout"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/coupons"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/orders"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/payments"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/reviews"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/wishlist"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/metrics"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/migrate"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/razorpay"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/redis"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := metrics.NewRegistry()
	handler, err := buildHandler(ctx, cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildHandler(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (http.Handler, error) {
	gdb := dbClient.DB()
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	standardFee, expressFee, err := cfg.Checkout.Fees()
	if err != nil {
		return nil, err
	}
	fees := checkout.Fees{Standard: standardFee, Express: expressFee}

	userRepo := users.NewRepository(gdb)
	userService, err := users.NewService(userRepo)
	if err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	addressRepo := address.NewRepository(gdb)
	addressService, err := address.NewService(address.ServiceParams{DB: dbClient, Repo: addressRepo, Users: userService})
	if err != nil {
		return nil, fmt.Errorf("address service: %w", err)
	}

	events := outbox.NewService(outbox.NewRepository(gdb), logg)
	readiness := map[string]controllers.Pinger{"db": dbClient, "redis": redisClient}

	productParams := products.ServiceParams{DB: dbClient, Repo: products.NewRepository(gdb), Logger: logg}
	bookingParams := bookings.ServiceParams{
		DB:     dbClient,
		Repo:   bookings.NewRepository(gdb),
		Outbox: events,
		Logger: logg,
	}
	if objects, err := storage.NewClient(ctx, cfg.Storage, logg); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "object storage disabled; image uploads will fail")
	} else {
		productParams.Images = objects
		bookingParams.Photos = objects
		readiness["storage"] = objects
	}

	productRepo := productParams.Repo
	productService, err := products.NewService(productParams)
	if err != nil {
		return nil, fmt.Errorf("product service: %w", err)
	}

	cartRepo := cart.NewRepository(gdb)
	cartService, err := cart.NewService(cartRepo, productRepo, userService)
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	selectionRepo := checkout.NewRepository(gdb)
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Repo:      selectionRepo,
		Addresses: addressRepo,
		Cart:      cartRepo,
		Users:     userService,
		Fees:      fees,
		Logger:    logg,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		DB:         dbClient,
		Repo:       orders.NewRepository(gdb),
		Cart:       cartRepo,
		Selections: selectionRepo,
		Addresses:  addressRepo,
		Products:   productRepo,
		UserRepo:   userRepo,
		Users:      userService,
		Outbox:     events,
		Fees:       fees,
		Metrics:    commerceMetrics,
		Logger:     logg,
	})
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}

	gateway, err := razorpay.NewFromConfig(cfg.Razorpay)
	if err != nil {
		return nil, fmt.Errorf("razorpay client: %w", err)
	}
	paymentService, err := payments.NewService(payments.ServiceParams{
		Gateway:  gateway,
		Checkout: checkoutService,
		Orders:   orderService,
		Metrics:  commerceMetrics,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("payment service: %w", err)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		DB:       dbClient,
		Repo:     reviews.NewRepository(gdb),
		Products: productRepo,
		Users:    userService,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlist.NewRepository(gdb),
		Products: productRepo,
		Users:    userService,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("wishlist service: %w", err)
	}

	couponService, err := coupons.NewService(coupons.NewRepository(gdb), time.Now)
	if err != nil {
		return nil, fmt.Errorf("coupon service: %w", err)
	}

	bookingService, err := bookings.NewService(bookingParams)
	if err != nil {
		return nil, fmt.Errorf("booking service: %w", err)
	}

	return routes.NewRouter(routes.Params{
		Config:         cfg,
		Logger:         logg,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry).Middleware,
		MetricsHandler: metrics.Handler(registry),
		Idempotency:    redisClient,
		RateLimiter:    redisClient,
		Readiness:      readiness,
		Users:          userService,
		Auth:           authService,
		Addresses:      addressService,
		Products:       productService,
		Cart:           cartService,
		Checkout:       checkoutService,
		Payments:       paymentService,
		Orders:         orderService,
		Reviews:        reviewService,
		Wishlist:       wishlistService,
		Coupons:        couponService,
		Bookings:       bookingService,
	}), nil
}
