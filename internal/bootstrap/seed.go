package bootstrap

import (
	"context"
	"log"

	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedRewardEvents inserts the default campaigns once. The catalog is
// admin-managed in production; these are the launch defaults.
func SeedRewardEvents(db *gorm.DB) error {
	eventRepo := repository.NewRewardEventRepository(db)
	ctx := context.Background()

	defaults := []model.RewardEvent{
		{
			TriggerType: "community_post",
			Active:      true,
			Condition:   model.ConditionFirstOnly,
			Points:      500,
			Description: "First community post",
		},
		{
			TriggerType: "daily_checkin",
			Active:      true,
			Condition:   model.ConditionOncePerDay,
			Points:      25,
			Description: "Daily check-in",
		},
		{
			TriggerType: "post_shared",
			Active:      true,
			Condition:   model.ConditionUnlimited,
			Points:      10,
			Description: "Shared a post outside the forum",
		},
	}

	for _, event := range defaults {
		count, err := eventRepo.CountByTriggerAndCondition(ctx, event.TriggerType, event.Condition)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := eventRepo.Create(ctx, &event); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDevData creates a sample user and post for local development.
func SeedDevData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "demo@example.com").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Demo user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demoUser := model.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: string(hashedPasswordBytes),
	}
	if err := db.Create(&demoUser).Error; err != nil {
		return err
	}

	demoPost := model.Post{
		UserID:  demoUser.ID,
		Title:   "Hello forum",
		Content: "First post from the demo account.",
	}
	if err := db.Create(&demoPost).Error; err != nil {
		return err
	}

	log.Println("Demo user seeded successfully")
	log.Println("   Email: demo@example.com")
	log.Println("   Password: demo12345")

	return nil
}
