package dto

import "time"

type AwardRequest struct {
	TriggerType string `json:"trigger_type" binding:"required,max=50"`
	SubjectID   string `json:"subject_id" binding:"omitempty,uuid"`
}

// AwardResponse is returned for every successful award call, including
// the no-op cases (already granted, no active campaign). Points and
// LogID are only set when a grant actually happened.
type AwardResponse struct {
	Awarded bool   `json:"awarded"`
	Points  int    `json:"points,omitempty"`
	LogID   string `json:"log_id,omitempty"`
}

type BalanceResponse struct {
	UserID    string    `json:"user_id"`
	Points    int64     `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RewardEventResponse struct {
	ID          string    `json:"id"`
	TriggerType string    `json:"trigger_type"`
	Condition   string    `json:"condition"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeaderboardEntry struct {
	Position int    `json:"position"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
}
