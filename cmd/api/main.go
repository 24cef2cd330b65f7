// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/checkout"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/ranking"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/infrastructure/database/postgres"
	"github.com/freshbasket/storefront/internal/infrastructure/database/redis"
	"github.com/freshbasket/storefront/internal/interfaces/http"
	"github.com/freshbasket/storefront/internal/interfaces/http/handlers"
	"github.com/freshbasket/storefront/internal/interfaces/http/routes"
	"github.com/freshbasket/storefront/internal/notify"
	"github.com/freshbasket/storefront/internal/pkg/auth"
	"github.com/freshbasket/storefront/internal/pkg/lock"
	"github.com/freshbasket/storefront/internal/pkg/logger"
	"github.com/freshbasket/storefront/internal/pkg/pdf"
	"github.com/freshbasket/storefront/internal/worker/reconcile"
)

func main() {
	resetDB := flag.Bool("reset-db", false, "drop all tables before migrating (development only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	passwords := auth.NewPasswordManager(cfg)
	migration := postgres.NewMigration(db.GetDB(), passwords)

	if *resetDB {
		if !cfg.IsDevelopment() {
			log.Fatalf("Refusing to drop tables in %s mode", cfg.App.Environment)
		}
		if err := migration.DropAllTables(); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.Printf("Warning: Data seeding failed: %v", err)
		}
		if err := migration.GetTableInfo(); err != nil {
			log.Printf("Warning: Could not read table info: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	// Live events
	hub := notify.NewHub(appLogger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	publisher, relay, err := notify.NewPublisher(cfg.Notifier, hub, redisClient.GetClient(), appLogger)
	if err != nil {
		log.Fatalf("Failed to set up notifier: %v", err)
	}
	if relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := relay.Run(ctx); err != nil {
				appLogger.WithError(err).Error("notifier relay stopped")
			}
		}()
		if closer, ok := relay.(io.Closer); ok {
			defer closer.Close()
		}
	}

	// Stores
	products := product.NewRepository(db.GetDB())
	users := user.NewRepository(db.GetDB())
	carts := cart.NewRepository(db.GetDB())
	orders := order.NewRepository(db.GetDB())
	ranks := ranking.NewRedisStore(redisClient.GetClient(), cfg.Ranking.Key)

	// Services
	checkoutService := checkout.NewService(checkout.Dependencies{
		Carts:     carts,
		Products:  products,
		Users:     users,
		Orders:    orders,
		Ranking:   ranks,
		Publisher: publisher,
		Locker:    lock.NewRedisLocker(redisClient.GetClient(), "storefront:lock:"),
		Logger:    appLogger,
	}, cfg.Checkout)
	orderService := order.NewService(orders)
	statusService := order.NewStatusService(orders, publisher, cfg.Orders.StrictTransitions, appLogger)
	rankingService := ranking.NewService(ranks, products, cfg.Ranking.DefaultTopK)

	var reconciler *reconcile.Worker
	if cfg.Reconcile.Enabled {
		reconciler = reconcile.NewWorker(orders, checkoutService, cfg.Reconcile, appLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reconciler.Start(ctx)
		}()
	}

	tokens := auth.NewJWTManager(cfg)
	server := http.NewServer(cfg, appLogger, http.Dependencies{
		Handlers: routes.Handlers{
			Auth:     handlers.NewAuthHandler(users, passwords, tokens, appLogger),
			Cart:     handlers.NewCartHandler(cart.NewService(carts, products), appLogger),
			Checkout: handlers.NewCheckoutHandler(checkoutService, appLogger),
			Order:    handlers.NewOrderHandler(orderService, pdf.NewService(cfg.Store), appLogger),
			Admin:    handlers.NewAdminHandler(orderService, statusService, rankingService, appLogger),
		},
		Tokens: tokens,
		Live:   notify.NewWebsocketHandler(hub, cfg.Security.CORSAllowedOrigins, appLogger),
		Redis:  redisClient.GetClient(),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	})

	log.Println("✅ All systems operational!")

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	if reconciler != nil {
		reconciler.Stop()
	}
	cancel()
	wg.Wait()

	log.Println("✅ Server shutdown completed")
}
