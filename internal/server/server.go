package server

import (
	"strings"
	"time"

	"anoa.com/communityrewards/internal/config"
	"anoa.com/communityrewards/internal/handler"
	"anoa.com/communityrewards/internal/middleware"
	"anoa.com/communityrewards/internal/repository"
	"anoa.com/communityrewards/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	eventRepo := repository.NewRewardEventRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	clock, err := service.NewDayClock(cfg.RewardTimezone)
	if err != nil {
		return nil, err
	}
	limiter := service.NewRateLimiter(redisClient)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := handler.NewAuthHandler(authSvc)

	rewardSvc := service.NewRewardService(eventRepo, ledgerRepo, postRepo, clock, limiter, cfg.RateLimitAward)
	rewardHandler := handler.NewRewardHandler(rewardSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}
	api.GET("/rewards/leaderboard", rewardHandler.GetLeaderboard)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/rewards/award", rewardHandler.Award)
		protected.GET("/rewards/balance", rewardHandler.GetBalance)
		protected.GET("/rewards/events", rewardHandler.ListEvents)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
