// Command server boots the rental-platform API: configuration, MySQL,
// Redis, the RabbitMQ publisher and consumer, and the HTTP surface.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/spaps/rental-backend/internal/cache"
	"github.com/spaps/rental-backend/internal/config"
	"github.com/spaps/rental-backend/internal/database"
	"github.com/spaps/rental-backend/internal/email"
	"github.com/spaps/rental-backend/internal/handler"
	"github.com/spaps/rental-backend/internal/middleware"
	"github.com/spaps/rental-backend/internal/queue"
	"github.com/spaps/rental-backend/internal/repository"
	"github.com/spaps/rental-backend/internal/router"
	"github.com/spaps/rental-backend/internal/service"
	"github.com/spaps/rental-backend/internal/storage"
	"github.com/spaps/rental-backend/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed")
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	objects, err := storage.New(ctx, cfg.Minio)
	cancel()
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}

	// Repositories share the one connection pool.
	users := repository.NewUserRepo(db)
	clients := repository.NewClientRepo(db)
	rentors := repository.NewRentorRepo(db)
	complexes := repository.NewComplexRepo(db)
	files := repository.NewFileRepo(db)

	codes := cache.NewRedisCodeStore(rdb)
	tokens := token.NewCodec(cfg.JWTSecret, cfg.RegistrationTokenTTL, cfg.PasswordResetTokenTTL, cfg.AuthTokenTTL)
	publisher := queue.NewPublisher(cfg.RabbitURL)

	auth := service.NewAuth(users, clients, rentors, codes, tokens, publisher,
		cfg.BcryptCost, cfg.CodeTTL, cfg.CodeResendWindow)

	// The consumer owns its reconnect loop and never returns.
	go queue.StartConsumer(cfg.RabbitURL, email.NewSender(cfg.SMTP))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.Metrics())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuth(auth, tokens, cfg),
		User:      handler.NewUser(users, cfg),
		Client:    handler.NewClient(clients),
		Rentor:    handler.NewRentor(rentors),
		Complex:   handler.NewComplex(complexes, rentors),
		File:      handler.NewFile(objects, files, clients, complexes, rentors),
		Health:    handler.NewHealth(db, rdb),
		SessionMW: middleware.Session(cfg.Cookie.SessionName, auth),
	})

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
