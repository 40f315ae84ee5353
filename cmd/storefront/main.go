package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/troywoldridge/legendary-reference-impl/internal/cart"
	"github.com/troywoldridge/legendary-reference-impl/internal/checkout"
	"github.com/troywoldridge/legendary-reference-impl/internal/feed"
	h "github.com/troywoldridge/legendary-reference-impl/internal/httpapi"
	"github.com/troywoldridge/legendary-reference-impl/internal/images"
	"github.com/troywoldridge/legendary-reference-impl/internal/metrics"
	"github.com/troywoldridge/legendary-reference-impl/internal/payment"
	"github.com/troywoldridge/legendary-reference-impl/internal/repository"
)

type Config struct {
	HTTPPort           string
	SiteURL            string
	AdminEmails        string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	RedisAddr string

	GatewayURL       string
	GatewaySecretKey string

	ImageDeliveryBase string
	ImageVariant      string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		SiteURL:            getEnv("SITE_URL", "http://localhost:8080"),
		AdminEmails:        getEnv("ADMIN_EMAILS", ""),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvAsInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		GatewayURL:       getEnv("PAYMENT_GATEWAY_URL", "https://api.stripe.com"),
		GatewaySecretKey: getEnv("PAYMENT_GATEWAY_SECRET_KEY", ""),

		ImageDeliveryBase: getEnv("IMAGE_DELIVERY_BASE", ""),
		ImageVariant:      getEnv("IMAGE_VARIANT", "public"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return value
}

func main() {
	log.Println("storefront starting...")

	cfg := loadConfig()
	if cfg.GatewaySecretKey == "" {
		log.Fatal("Missing PAYMENT_GATEWAY_SECRET_KEY")
	}

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	resolver := images.NewResolver(cfg.ImageDeliveryBase, cfg.ImageVariant)
	gateway := payment.NewClient(cfg.GatewayURL, cfg.GatewaySecretKey, 10*time.Second)

	checkoutService := checkout.NewService(repo, gateway, 5*time.Second, 10*time.Second)
	cartService := cart.NewService(cart.NewRedisStore(redisClient))
	feedWriter := feed.NewWriter(cfg.SiteURL, resolver)

	adminGate := h.NewAdminGate(cfg.AdminEmails)
	serverMetrics := metrics.NewServerMetrics("api")

	productHandler := h.NewProductHandler(repo, resolver, adminGate, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.MaxRequestBodySize)
	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	feedHandler := h.NewFeedHandler(repo, feedWriter, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(serverMetrics.Middleware)
	r.Use(h.IdentityMiddleware)
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/google/merchant-feed", feedHandler.MerchantFeed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{slug}", productHandler.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout/intent", checkoutHandler.CreateIntent)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
