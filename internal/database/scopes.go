package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/agency-hub/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// DateRange is an optional createdAt window.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CreatedWithin restricts column to the range; a zero range is a no-op.
func CreatedWithin(column string, r DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Start != nil {
			db = db.Where(column+" >= ?", *r.Start)
		}
		if r.End != nil {
			db = db.Where(column+" <= ?", *r.End)
		}
		return db
	}
}

// MonthExpr returns a SQL expression formatting column as YYYY-MM for the active dialect.
func MonthExpr(db *gorm.DB, column string) string {
	switch db.Dialector.Name() {
	case "mysql":
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", column)
	case "postgres":
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
	default:
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
	}
}
