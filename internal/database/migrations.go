package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// AddIndexes adds the lookup indexes the struct tags do not declare.
func AddIndexes(db *gorm.DB) error {
	indexes := []index{
		// Tasks sorted by due date per project
		{"tasks", "idx_tasks_project_due", "project_id, due_date"},

		// Notification inbox newest first
		{"notifications", "idx_notifications_recipient_created", "recipient_id, created_at"},

		// Conversation reads
		{"messages", "idx_messages_receiver_read", "receiver_id, is_read"},

		// Revenue queries
		{"invoices", "idx_invoices_agency_created", "agency_id, created_at"},
		{"projects", "idx_projects_agency_created", "agency_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("Created index")
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate does not cover.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
