package repository

import (
	"context"
	"errors"

	"anoa.com/communityrewards/internal/model"
	"gorm.io/gorm"
)

type RewardEventRepository interface {
	Create(ctx context.Context, event *model.RewardEvent) error
	// FindActiveByTrigger resolves the campaign that applies to a
	// trigger type. Returns (nil, nil) when no active campaign matches;
	// absence of a promotion is a normal state, not an error.
	FindActiveByTrigger(ctx context.Context, triggerType string) (*model.RewardEvent, error)
	ListActive(ctx context.Context) ([]model.RewardEvent, error)
	CountByTriggerAndCondition(ctx context.Context, triggerType string, condition model.Condition) (int64, error)
}

type rewardEventRepository struct {
	db *gorm.DB
}

func NewRewardEventRepository(db *gorm.DB) RewardEventRepository {
	return &rewardEventRepository{db: db}
}

func (r *rewardEventRepository) Create(ctx context.Context, event *model.RewardEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *rewardEventRepository) FindActiveByTrigger(ctx context.Context, triggerType string) (*model.RewardEvent, error) {
	var event model.RewardEvent
	// When several active campaigns exist for one trigger, the most
	// recently created one wins.
	err := r.db.WithContext(ctx).
		Where("trigger_type = ? AND active = ?", triggerType, true).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *rewardEventRepository) ListActive(ctx context.Context) ([]model.RewardEvent, error) {
	var events []model.RewardEvent
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *rewardEventRepository) CountByTriggerAndCondition(ctx context.Context, triggerType string, condition model.Condition) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RewardEvent{}).
		Where("trigger_type = ? AND condition = ?", triggerType, condition).
		Count(&count).Error
	return count, err
}
