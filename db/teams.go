package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// EnsureTeam creates the team row and its default settings row on first
// sight. Both inserts are conflict-tolerant so concurrent events for a new
// workspace cannot race each other into an error.
func (s *gormStore) EnsureTeam(ctx context.Context, teamID string) error {
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Team{TeamID: teamID, CreatedAt: now}).Error
	if err != nil {
		return fmt.Errorf("EnsureTeam: failed to create team %s: %w", teamID, err)
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Settings{TeamID: teamID, MaskUserName: false, UpdatedAt: now}).Error
	if err != nil {
		return fmt.Errorf("EnsureTeam: failed to create settings for team %s: %w", teamID, err)
	}

	return nil
}
