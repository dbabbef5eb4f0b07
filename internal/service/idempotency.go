package service

import (
	"fmt"

	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/pkg/apperror"
	"github.com/google/uuid"
)

// BuildIdempotencyKey derives the scope identity of one logical award
// attempt. Identical attempts (same user, trigger, condition, subject
// and, for daily windows, day) always map to the same key; the key is
// what the ledger stores, so a repeat attempt lands on an existing row.
func BuildIdempotencyKey(event *model.RewardEvent, subjectID *uuid.UUID, clock *DayClock) (string, error) {
	switch event.Condition {
	case model.ConditionFirstOnly:
		return fmt.Sprintf("first:%s", event.TriggerType), nil
	case model.ConditionOncePerDay:
		return fmt.Sprintf("daily:%s:%s", event.TriggerType, clock.DayKey()), nil
	case model.ConditionUnlimited:
		subject := "none"
		if subjectID != nil {
			subject = subjectID.String()
		}
		return fmt.Sprintf("subject:%s:%s", event.TriggerType, subject), nil
	default:
		return "", fmt.Errorf("%w: unknown condition %q", apperror.ErrInvalidArgument, event.Condition)
	}
}
