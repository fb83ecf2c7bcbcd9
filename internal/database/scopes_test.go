package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stamped struct {
	ID        uint64 `gorm:"primarykey"`
	CreatedAt time.Time
}

func TestMonthExpr_SQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&stamped{}))

	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&stamped{CreatedAt: created}).Error)

	var month string
	require.NoError(t, db.Model(&stamped{}).Select(MonthExpr(db, "created_at")).Scan(&month).Error)
	require.Equal(t, "2026-03", month)
}

func TestCreatedWithin(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&stamped{}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&stamped{CreatedAt: base.AddDate(0, i, 0)}).Error)
	}

	start := base.AddDate(0, 1, 0)
	var count int64
	require.NoError(t, db.Model(&stamped{}).Scopes(CreatedWithin("created_at", DateRange{Start: &start})).Count(&count).Error)
	require.Equal(t, int64(2), count)

	require.NoError(t, db.Model(&stamped{}).Scopes(CreatedWithin("created_at", DateRange{})).Count(&count).Error)
	require.Equal(t, int64(3), count)
}
