package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"identity-service/internal/config"
	"identity-service/internal/database"
	"identity-service/internal/handler"
	"identity-service/internal/httperr"
	"identity-service/internal/queue"
	"identity-service/internal/repository"
	"identity-service/internal/router"
	queue_publisher "identity-service/internal/service"
	"identity-service/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional; a nil client leaves user lookups uncached.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, user cache disabled")
	}
	cache := repository.NewUserCache(rdb, 30*time.Second)

	users := repository.NewUserRepo(db, cache)
	tokens := token.NewService(cfg)

	publish := func(ctx context.Context, ev queue.UserRegisteredEvent) error {
		return queue_publisher.PublishUserRegistered(ctx, cfg.RabbitURL, ev)
	}
	auth := handler.NewAuthHandler(cfg, users, tokens, publish)

	// The signup audit consumer reconnects on its own; it never stops the server.
	go queue.StartSignupConsumer(cfg.RabbitURL)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, tokens)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
