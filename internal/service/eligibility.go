package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityrewards/internal/repository"
	"anoa.com/communityrewards/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EligibilityRule authorizes one trigger type before any grant is attempted.
type EligibilityRule func(ctx context.Context, userID uuid.UUID, subjectID *uuid.UUID) error

// EligibilityRegistry maps trigger types to their authorization rule.
// Triggers without a registered rule pass through unchecked; rules are
// opt-in per trigger. TODO: revisit the allow-by-default once a second
// subject-scoped trigger lands — deny-by-default would close the gap.
type EligibilityRegistry struct {
	rules map[string]EligibilityRule
}

func NewEligibilityRegistry() *EligibilityRegistry {
	return &EligibilityRegistry{rules: make(map[string]EligibilityRule)}
}

func (r *EligibilityRegistry) Register(triggerType string, rule EligibilityRule) {
	r.rules[triggerType] = rule
}

func (r *EligibilityRegistry) Check(ctx context.Context, triggerType string, userID uuid.UUID, subjectID *uuid.UUID) error {
	rule, ok := r.rules[triggerType]
	if !ok {
		return nil
	}
	return rule(ctx, userID, subjectID)
}

// PostAuthorshipRule requires the award subject to be a post authored
// by the claiming user.
func PostAuthorshipRule(postRepo repository.PostRepository) EligibilityRule {
	return func(ctx context.Context, userID uuid.UUID, subjectID *uuid.UUID) error {
		if subjectID == nil {
			return fmt.Errorf("%w: subject_id is required for this trigger", apperror.ErrInvalidArgument)
		}
		post, err := postRepo.FindByID(ctx, *subjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %s", apperror.ErrNotFound, subjectID)
			}
			return err
		}
		if post.UserID != userID {
			return fmt.Errorf("%w: only the post author can claim this reward", apperror.ErrForbidden)
		}
		return nil
	}
}
