package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/config"
	"github.com/uicode-market/uicode/internal/database"
	"github.com/uicode-market/uicode/internal/handler"
	"github.com/uicode-market/uicode/internal/middleware"
	"github.com/uicode-market/uicode/internal/queue"
	"github.com/uicode-market/uicode/internal/repository"
	"github.com/uicode-market/uicode/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public-listing response cache and the rate
	// limiter. A nil client simply disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; caching and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	components := repository.NewComponentRepo(db)
	ratings := repository.NewRatingRepo(db)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	componentHandler := handler.NewComponentHandler(components, rdb, cacheCfg.Prefix)
	ratingHandler := handler.NewRatingHandler(ratings)
	adminHandler := handler.NewAdminHandler(users, components, rdb, cacheCfg.Prefix)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, componentHandler,
		middleware.NewTokenBucket(rateCfg, rdb),
		middleware.NewRedisCache(cacheCfg, rdb),
	)
	router.RegisterUser(e, componentHandler, ratingHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// The moderation log consumer reconnects on its own; it runs for the
	// life of the process.
	go func() {
		if err := queue.StartReviewConsumer(); err != nil {
			log.Printf("review consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
