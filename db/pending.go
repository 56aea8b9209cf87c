package db

import (
	"context"
	"fmt"
	"time"
)

func (s *gormStore) EnqueuePending(ctx context.Context, event *PendingEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("EnqueuePending: failed to save pending event for team %s: %w", event.TeamID, err)
	}
	return nil
}

func (s *gormStore) DuePendingEvents(ctx context.Context, now time.Time, limit int) ([]PendingEvent, error) {
	var events []PendingEvent
	err := s.db.WithContext(ctx).
		Where("next_retry_at <= ?", now).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("DuePendingEvents: failed to fetch due events: %w", err)
	}
	return events, nil
}

func (s *gormStore) DeletePending(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&PendingEvent{}, id).Error; err != nil {
		return fmt.Errorf("DeletePending: failed to delete pending event %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) RequeuePending(ctx context.Context, id uint, attempts int, nextRetryAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&PendingEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":      attempts,
			"next_retry_at": nextRetryAt,
		}).Error
	if err != nil {
		return fmt.Errorf("RequeuePending: failed to requeue pending event %d: %w", id, err)
	}
	return nil
}
