package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/scrumboard-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds lookup indexes that the model tags do not declare
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Latest-version lookup for tag generation
		{&models.Version{}, "versions", "idx_versions_project_created", "project_id, created_at, id"},

		// Sprint listing per project
		{&models.Sprint{}, "sprints", "idx_sprints_project_status", "project_id, status"},

		// Backlog queries
		{&models.UserStory{}, "user_stories", "idx_user_stories_project_sprint", "project_id, sprint_id"},

		// Membership lookups by user
		{&models.ProjectMember{}, "project_members", "idx_project_members_user_id", "user_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "name", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
