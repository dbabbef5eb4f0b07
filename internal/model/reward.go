package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Condition is the repetition policy of a reward event: how often the
// same user can be granted points for the same trigger.
type Condition string

const (
	// ConditionFirstOnly grants once per user, ever.
	ConditionFirstOnly Condition = "first_only"
	// ConditionOncePerDay grants once per user per calendar day in the
	// configured reward timezone.
	ConditionOncePerDay Condition = "once_per_day"
	// ConditionUnlimited grants once per distinct subject.
	ConditionUnlimited Condition = "unlimited"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionFirstOnly, ConditionOncePerDay, ConditionUnlimited:
		return true
	}
	return false
}

// RewardEvent is an admin-authored campaign: which user action earns
// points, how many, and under which repetition policy. This service
// only reads it.
type RewardEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TriggerType string    `gorm:"size:50;index;not null" json:"trigger_type"`
	Active      bool      `gorm:"not null;default:false" json:"active"`
	Condition   Condition `gorm:"size:20;not null" json:"condition"`
	Points      int       `gorm:"not null" json:"points"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *RewardEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// PointLog is the immutable audit record of a single grant. The
// (user_id, idempotency_key) unique index is what makes granting
// exactly-once: the row's existence is the sole proof of award, and it
// is never updated or deleted.
type PointLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_scope,priority:1" json:"user_id"`
	IdempotencyKey string     `gorm:"size:120;not null;uniqueIndex:idx_user_scope,priority:2" json:"idempotency_key"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null" json:"event_id"`
	TriggerType    string     `gorm:"size:50;not null" json:"trigger_type"`
	Points         int        `gorm:"not null" json:"points"`
	SubjectID      *uuid.UUID `gorm:"type:uuid" json:"subject_id,omitempty"`
	Condition      Condition  `gorm:"size:20;not null" json:"condition"`
	// Assigned by the database at commit, not the caller's clock.
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (l *PointLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// UserBalance is the running total of granted points for one user.
// Created lazily on first award, incremented only inside the ledger
// transaction, never decremented.
type UserBalance struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Points    int64     `gorm:"not null;default:0" json:"points"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
