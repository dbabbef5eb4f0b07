package main

import (
	"log"

	"anoa.com/communityrewards/internal/bootstrap"
	"anoa.com/communityrewards/internal/config"
	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/internal/server"
	"anoa.com/communityrewards/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRewardEvents(db); err != nil {
		log.Fatalf("failed to seed reward events: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDevData(db); err != nil {
			log.Fatalf("failed to seed dev data: %v", err)
		}
	}

	redisClient := connectRedis(cfg)

	srv, err := server.NewServer(db, redisClient, cfg)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.RewardEvent{},
		&model.PointLog{},
		&model.UserBalance{},
	)
}

func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, award rate limiting disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opt)
}
