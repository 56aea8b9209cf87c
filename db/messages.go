package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *gormStore) GetMessage(ctx context.Context, teamID, channelID, ts string) (*Message, error) {
	var message Message
	err := s.db.WithContext(ctx).
		Where("team_id = ? AND channel_id = ? AND ts = ?", teamID, channelID, ts).
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetMessage: failed to fetch message %s/%s/%s: %w", teamID, channelID, ts, err)
	}
	return &message, nil
}

// InsertMessage inserts a root message unless its natural key already
// exists. Duplicate webhook deliveries land here and report false.
func (s *gormStore) InsertMessage(ctx context.Context, message *Message) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(message)
	if res.Error != nil {
		return false, fmt.Errorf("InsertMessage: failed to save message %s/%s/%s: %w",
			message.TeamID, message.ChannelID, message.Ts, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) InsertReply(ctx context.Context, reply *Reply) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reply)
	if res.Error != nil {
		return false, fmt.Errorf("InsertReply: failed to save reply %s/%s/%s: %w",
			reply.TeamID, reply.ChannelID, reply.Ts, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListMessages returns up to limit messages in descending insertion order,
// skipping the first skip rows. Message.ID is monotonic with insertion, so
// offsets into this ordering are stable as long as nothing is ever deleted.
func (s *gormStore) ListMessages(ctx context.Context, teamID, channelID string, skip, limit int) ([]MessageWithUser, error) {
	var rows []MessageWithUser
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.team_id, messages.channel_id, messages.ts, messages.user_id, messages.text, messages.created_at, users.real_name AS user_name").
		Joins("LEFT JOIN users ON users.team_id = messages.team_id AND users.user_id = messages.user_id").
		Where("messages.team_id = ? AND messages.channel_id = ?", teamID, channelID).
		Order("messages.id DESC").
		Offset(skip).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ListMessages: failed to list messages for %s/%s: %w", teamID, channelID, err)
	}
	return rows, nil
}

// ListReplies returns a thread's replies in arrival order.
func (s *gormStore) ListReplies(ctx context.Context, messageID uint) ([]ReplyWithUser, error) {
	var rows []ReplyWithUser
	err := s.db.WithContext(ctx).
		Table("replies").
		Select("replies.id, replies.team_id, replies.channel_id, replies.ts, replies.user_id, replies.text, replies.message_id, replies.created_at, users.real_name AS user_name").
		Joins("LEFT JOIN users ON users.team_id = replies.team_id AND users.user_id = replies.user_id").
		Where("replies.message_id = ?", messageID).
		Order("replies.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ListReplies: failed to list replies for message %d: %w", messageID, err)
	}
	return rows, nil
}
