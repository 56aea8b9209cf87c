package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *gormStore) GetUser(ctx context.Context, teamID, userID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: failed to fetch user %s in team %s: %w", userID, teamID, err)
	}
	return &user, nil
}

// CreateUser inserts the row unless the natural key is already taken. A
// false return means another writer won the first-sight race.
func (s *gormStore) CreateUser(ctx context.Context, user *User) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user)
	if res.Error != nil {
		return false, fmt.Errorf("CreateUser: failed to create user %s in team %s: %w", user.UserID, user.TeamID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) GetChannel(ctx context.Context, teamID, channelID string) (*Channel, error) {
	var channel Channel
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND channel_id = ?", teamID, channelID).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetChannel: failed to fetch channel %s in team %s: %w", channelID, teamID, err)
	}
	return &channel, nil
}

func (s *gormStore) CreateChannel(ctx context.Context, channel *Channel) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(channel)
	if res.Error != nil {
		return false, fmt.Errorf("CreateChannel: failed to create channel %s in team %s: %w", channel.ChannelID, channel.TeamID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) ListChannels(ctx context.Context, teamID string) ([]Channel, error) {
	var channels []Channel
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("name ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("ListChannels: failed to list channels for team %s: %w", teamID, err)
	}
	return channels, nil
}
