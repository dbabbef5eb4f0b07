package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"anoa.com/communityrewards/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate",
		filepath.Join(t.TempDir(), "rewards.db"))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.RewardEvent{},
		&model.PointLog{},
		&model.UserBalance{},
	))

	return db
}

// newTestClock returns a DayClock pinned to a fixed instant.
func newTestClock(t *testing.T, timezone string, at time.Time) *DayClock {
	t.Helper()

	clock, err := NewDayClock(timezone)
	require.NoError(t, err)
	clock.now = func() time.Time { return at }
	return clock
}
