package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

func (s *gormStore) GetSettings(ctx context.Context, teamID string) (*Settings, error) {
	var settings Settings
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetSettings: failed to fetch settings for team %s: %w", teamID, err)
	}
	return &settings, nil
}

func (s *gormStore) SaveSettings(ctx context.Context, teamID string, maskUserName bool) error {
	res := s.db.WithContext(ctx).
		Model(&Settings{}).
		Where("team_id = ?", teamID).
		Updates(map[string]any{
			"mask_user_name": maskUserName,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("SaveSettings: failed to update settings for team %s: %w", teamID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("SaveSettings: no settings row for team %s", teamID)
	}
	return nil
}
