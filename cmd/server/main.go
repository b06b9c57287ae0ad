package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"carpool/infrastructure/cache"
	"carpool/infrastructure/db"
	"carpool/infrastructure/ws"
	"carpool/internal/config"
	httpDelivery "carpool/internal/delivery/http"
	wsDelivery "carpool/internal/delivery/websocket"
	"carpool/internal/repository"
	"carpool/internal/usecase"
	"carpool/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("godotenv: error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "carpool-dev-secret-change-this"
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET for production")
	}

	ctx := context.Background()

	mongoDb, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer mongoDb.Close(ctx)

	if err := mongoDb.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	log.Println("Connected to MongoDB")

	// Initialize repositories
	userRepo := repository.NewUserRepository(*mongoDb.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(*mongoDb.DB)
	familyRepo := repository.NewFamilyRepository(*mongoDb.DB)
	groupRepo := repository.NewGroupRepository(*mongoDb.DB)
	prefRepo := repository.NewPreferenceRepository(*mongoDb.DB)
	scheduleRepo := repository.NewScheduleRepository(*mongoDb.DB)
	notificationRepo := repository.NewNotificationRepository(*mongoDb.DB)

	jwtManager := jwt.NewJWTManager(jwtSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	entraSecret := cfg.EntraSecret
	if entraSecret == "" {
		entraSecret = jwtSecret
	}
	entraVerifier := jwt.NewEntraVerifier(entraSecret)
	adminPolicy := usecase.NewEmailSetPolicy(cfg.AdminEmails)

	// Redis is optional: without it the server runs single-node with
	// in-memory reset tokens and a local notification hub.
	useRedis := cfg.RedisAddr != ""

	var redisClient *goredis.Client
	var resetTokens cache.TokenStore
	var hub ws.IHub

	if useRedis {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		resetTokens = cache.NewRedisTokenStoreWithClient(redisClient)
		hub = ws.NewRedisHub(redisClient, cfg.ServerID)
		log.Printf("Using Redis at %s with server ID: %s", cfg.RedisAddr, cfg.ServerID)
	} else {
		resetTokens = cache.NewMemoryTokenStore(time.Minute)
		hub = ws.NewHub()
		log.Println("Using in-memory token store and hub (single server)")
	}
	defer resetTokens.Close()

	go hub.Run()

	// Revoked and expired refresh tokens accumulate; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := refreshTokenRepo.DeleteExpired(ctx); err != nil {
				log.Printf("refresh token sweep: %v", err)
			}
		}
	}()

	// Initialize use cases
	authUc := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, familyRepo, resetTokens, jwtManager, entraVerifier, adminPolicy, cfg.ResetTokenTTL)
	notificationUc, err := usecase.NewNotificationUsecase(notificationRepo, hub)
	if err != nil {
		log.Fatalf("notifications: %v", err)
	}
	groupUc := usecase.NewGroupUsecase(groupRepo, userRepo, notificationUc)
	prefUc := usecase.NewPreferenceUsecase(prefRepo, groupRepo)
	scheduleUc := usecase.NewScheduleUsecase(scheduleRepo, prefRepo, groupRepo, notificationUc)
	userUc := usecase.NewUserUsecase(userRepo, familyRepo)

	router := chi.NewRouter()
	router.Use(middleware.Logger)

	// Initialize handlers
	dispatcher := httpDelivery.NewAuthDispatcher(authUc, !cfg.IsProduction())
	httpH := httpDelivery.NewHttpHandler(groupUc, prefUc, scheduleUc, notificationUc, userUc)
	websocketH := wsDelivery.NewHandler(hub, authUc)
	authMiddleware := httpDelivery.NewAuthMiddleware(authUc)
	healthH := httpDelivery.NewHealthHandler(mongoDb, hub)

	// Map routes
	httpDelivery.MapHttpRoutes(router, httpH, websocketH, dispatcher, authMiddleware, healthH)

	log.Printf("HTTP server is running on :%s", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
