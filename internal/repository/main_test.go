package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"anoa.com/communityrewards/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database. _txlock=immediate makes
// concurrent transactions queue at BEGIN instead of failing on lock
// upgrade, which mirrors how concurrent award transactions serialize
// against postgres.
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
