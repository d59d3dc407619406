package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type compositeIndex struct {
	table   string
	name    string
	columns string
}

// compositeIndexes back the review queue, listing and reporting queries.
// Single-column indexes are declared on the models.
var compositeIndexes = []compositeIndex{
	{"tasks", "idx_tasks_workspace_status", "workspace_id, status"},
	{"tasks", "idx_tasks_workspace_assignee", "workspace_id, assigned_to"},
	{"tasks", "idx_tasks_workspace_created_at", "workspace_id, created_at"},
	{"task_submissions", "idx_submissions_status_submitted_at", "status, submitted_at"},
	{"task_submissions", "idx_submissions_user_status", "user_id, status"},
	{"workspace_members", "idx_workspace_members_manager", "workspace_id, manager_id"},
}

// AddIndexes creates the composite indexes that do not exist yet.
func AddIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(logrus.Fields{
			"index":   idx.name,
			"table":   idx.table,
			"columns": idx.columns,
		}).Info("Created index")
	}

	return nil
}
