package repository

import (
	"context"
	"errors"

	"anoa.com/communityrewards/internal/model"
	"anoa.com/communityrewards/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// awardRetryLimit bounds how often a grant transaction is replayed
// after losing a write race. Every retry re-reads the ledger, so a
// loser settles on the no-op branch on its next pass.
const awardRetryLimit = 3

type LedgerRepository interface {
	// Award grants grant.Points to grant.UserID at most once per
	// (user, idempotency key). It reports whether this call performed
	// the grant; false means the ledger already held an entry for the
	// scope, which is a success, not an error.
	Award(ctx context.Context, grant *model.PointLog) (bool, error)
	FindEntry(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*model.PointLog, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserBalance, error)
	TopBalances(ctx context.Context, limit int) ([]model.UserBalance, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Award(ctx context.Context, grant *model.PointLog) (bool, error) {
	for attempt := 0; attempt < awardRetryLimit; attempt++ {
		awarded, err := r.tryAward(ctx, grant)
		if err == nil {
			return awarded, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent transaction committed the same scope first.
			// Replay the transaction; the fresh read will see the entry.
			continue
		}
		return false, err
	}
	return false, apperror.ErrConflict
}

// tryAward runs the grant as one transaction: read the ledger entry
// for the scope, and either stop (already granted) or insert the entry
// and increment the balance. Nothing is written outside the transaction.
func (r *ledgerRepository) tryAward(ctx context.Context, grant *model.PointLog) (bool, error) {
	awarded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PointLog
		err := tx.Where("user_id = ? AND idempotency_key = ?", grant.UserID, grant.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			// The entry's existence is the proof of award.
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(grant).Error; err != nil {
			return err
		}

		// Lazily create the balance seeded at this grant's points,
		// or atomically add to it.
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr("points + ?", grant.Points),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&model.UserBalance{
			UserID: grant.UserID,
			Points: int64(grant.Points),
		}).Error
		if err != nil {
			return err
		}

		awarded = true
		return nil
	})
	return awarded, err
}

func (r *ledgerRepository) FindEntry(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*model.PointLog, error) {
	var entry model.PointLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, idempotencyKey).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserBalance, error) {
	var balance model.UserBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A user that was never awarded simply has zero points.
			return &model.UserBalance{UserID: userID}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *ledgerRepository) TopBalances(ctx context.Context, limit int) ([]model.UserBalance, error) {
	var balances []model.UserBalance
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("points DESC").
		Limit(limit).
		Find(&balances).Error
	return balances, err
}
