package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/dvalery/tienda-backend/internal/cart"
	"github.com/dvalery/tienda-backend/internal/checkout"
	"github.com/dvalery/tienda-backend/internal/config"
	"github.com/dvalery/tienda-backend/internal/order"
	"github.com/dvalery/tienda-backend/internal/platform/database"
	"github.com/dvalery/tienda-backend/internal/product"
	"github.com/dvalery/tienda-backend/internal/user"
	"github.com/dvalery/tienda-backend/pkg/logger"
	"github.com/dvalery/tienda-backend/pkg/shutdown"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "tienda-backend",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// the frontend expects plain JSON numbers for prices and totals
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)

	cartRepo := cart.NewPostgresRepository(db)
	cartHandler := cart.NewHandler(cart.NewService(cartRepo, productService))

	orderRepo := order.NewPostgresRepository(db)
	orderHandler := order.NewHandler(order.NewService(orderRepo))

	checkoutHandler := checkout.NewHandler(checkout.NewService(db, cartRepo, orderRepo))

	// routes registered before the JWT middleware stay public
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("starting server", "addr", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
