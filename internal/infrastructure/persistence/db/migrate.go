package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Migrate creates or updates the tracker schema.
func Migrate(gdb *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("running database migrations")

	err := gdb.AutoMigrate(
		&Organization{},
		&OrganizationMember{},
		&Team{},
		&Issue{},
		&Label{},
		&IssueLabel{},
	)
	if err != nil {
		log.Error().Err(err).Msg("auto-migration failed")
		return err
	}

	if err := createCustomIndexes(gdb); err != nil {
		log.Error().Err(err).Msg("failed to create custom indexes")
		return err
	}
	log.Info().Msg("database migrations completed")
	return nil
}

var customIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_issues_team_position ON issues (team_id, position, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_assignee_updated ON issues (assignee_id, updated_at) WHERE assignee_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_issues_due_date ON issues (team_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_org_members_user ON organization_members (user_id)`,
}

func createCustomIndexes(gdb *gorm.DB) error {
	for _, stmt := range customIndexes {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
