package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/communityrewards/internal/dto"
	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/internal/repository"
	"anoa.com/communityrewards/pkg/apperror"
	"github.com/google/uuid"
)

const (
	// TriggerCommunityPost is awarded for authoring a forum post; it is
	// the only trigger with a registered eligibility rule.
	TriggerCommunityPost = "community_post"

	awardAction = "award"
)

type RewardService interface {
	Award(ctx context.Context, userID uuid.UUID, req dto.AwardRequest) (*dto.AwardResponse, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error)
	ListActiveEvents(ctx context.Context) ([]dto.RewardEventResponse, error)
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
}

type rewardService struct {
	eventRepo     repository.RewardEventRepository
	ledgerRepo    repository.LedgerRepository
	rules         *EligibilityRegistry
	clock         *DayClock
	limiter       *RateLimiter
	awardCooldown time.Duration
}

func NewRewardService(
	eventRepo repository.RewardEventRepository,
	ledgerRepo repository.LedgerRepository,
	postRepo repository.PostRepository,
	clock *DayClock,
	limiter *RateLimiter,
	awardCooldown time.Duration,
) RewardService {
	rules := NewEligibilityRegistry()
	rules.Register(TriggerCommunityPost, PostAuthorshipRule(postRepo))

	return &rewardService{
		eventRepo:     eventRepo,
		ledgerRepo:    ledgerRepo,
		rules:         rules,
		clock:         clock,
		limiter:       limiter,
		awardCooldown: awardCooldown,
	}
}

func (s *rewardService) Award(ctx context.Context, userID uuid.UUID, req dto.AwardRequest) (*dto.AwardResponse, error) {
	allowed, err := s.limiter.Acquire(ctx, userID, awardAction, s.awardCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := s.limiter.TTL(ctx, userID, awardAction)
		return nil, fmt.Errorf("%w: please wait %.0f seconds", apperror.ErrRateLimitExceeded, ttl.Seconds())
	}

	// Free the cooldown when the attempt didn't get through.
	attemptFailed := true
	defer func() {
		if attemptFailed {
			_ = s.limiter.Release(ctx, userID, awardAction)
		}
	}()

	var subjectID *uuid.UUID
	if req.SubjectID != "" {
		sid, err := uuid.Parse(req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid subject_id", apperror.ErrInvalidArgument)
		}
		subjectID = &sid
	}

	event, err := s.eventRepo.FindActiveByTrigger(ctx, req.TriggerType)
	if err != nil {
		return nil, err
	}
	if event == nil {
		// No running campaign for this trigger is a normal outcome.
		attemptFailed = false
		return &dto.AwardResponse{Awarded: false}, nil
	}

	if err := validateEvent(event); err != nil {
		return nil, err
	}

	key, err := BuildIdempotencyKey(event, subjectID, s.clock)
	if err != nil {
		return nil, err
	}

	if err := s.rules.Check(ctx, req.TriggerType, userID, subjectID); err != nil {
		return nil, err
	}

	grant := &model.PointLog{
		UserID:         userID,
		IdempotencyKey: key,
		EventID:        event.ID,
		TriggerType:    event.TriggerType,
		Points:         event.Points,
		SubjectID:      subjectID,
		Condition:      event.Condition,
	}

	awarded, err := s.ledgerRepo.Award(ctx, grant)
	if err != nil {
		return nil, err
	}
	attemptFailed = false

	if !awarded {
		return &dto.AwardResponse{Awarded: false}, nil
	}

	log.Printf("awarded %d points to user %s (trigger=%s key=%s)", event.Points, userID, event.TriggerType, key)

	return &dto.AwardResponse{
		Awarded: true,
		Points:  event.Points,
		LogID:   grant.ID.String(),
	}, nil
}

// validateEvent rejects malformed campaign data before any transaction
// is opened.
func validateEvent(event *model.RewardEvent) error {
	if event.Points <= 0 {
		return fmt.Errorf("%w: campaign %s has non-positive points", apperror.ErrInvalidArgument, event.ID)
	}
	if !event.Condition.Valid() {
		return fmt.Errorf("%w: campaign %s has unknown condition %q", apperror.ErrInvalidArgument, event.ID, event.Condition)
	}
	return nil
}

func (s *rewardService) GetBalance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error) {
	balance, err := s.ledgerRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		UserID:    balance.UserID.String(),
		Points:    balance.Points,
		UpdatedAt: balance.UpdatedAt,
	}, nil
}

func (s *rewardService) ListActiveEvents(ctx context.Context) ([]dto.RewardEventResponse, error) {
	events, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.RewardEventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, dto.RewardEventResponse{
			ID:          event.ID.String(),
			TriggerType: event.TriggerType,
			Condition:   string(event.Condition),
			Points:      event.Points,
			Description: event.Description,
			CreatedAt:   event.CreatedAt,
		})
	}
	return resp, nil
}

func (s *rewardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	balances, err := s.ledgerRepo.TopBalances(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(balances))
	for i, balance := range balances {
		entries = append(entries, dto.LeaderboardEntry{
			Position: i + 1,
			Username: balance.User.Username,
			Points:   balance.Points,
		})
	}
	return entries, nil
}
