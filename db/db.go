package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the persistence boundary of the archive. Get* methods return
// (nil, nil) when no row matches. Insert/Create methods for rows with a
// natural key report whether the row was actually inserted; false means the
// key was already taken, which callers treat as normal control flow.
type Store interface {
	EnsureTeam(ctx context.Context, teamID string) error

	GetUser(ctx context.Context, teamID, userID string) (*User, error)
	CreateUser(ctx context.Context, user *User) (bool, error)
	GetChannel(ctx context.Context, teamID, channelID string) (*Channel, error)
	CreateChannel(ctx context.Context, channel *Channel) (bool, error)

	GetMessage(ctx context.Context, teamID, channelID, ts string) (*Message, error)
	InsertMessage(ctx context.Context, message *Message) (bool, error)
	InsertReply(ctx context.Context, reply *Reply) (bool, error)

	ListChannels(ctx context.Context, teamID string) ([]Channel, error)
	ListMessages(ctx context.Context, teamID, channelID string, skip, limit int) ([]MessageWithUser, error)
	ListReplies(ctx context.Context, messageID uint) ([]ReplyWithUser, error)

	GetSettings(ctx context.Context, teamID string) (*Settings, error)
	SaveSettings(ctx context.Context, teamID string, maskUserName bool) error

	EnqueuePending(ctx context.Context, event *PendingEvent) error
	DuePendingEvents(ctx context.Context, now time.Time, limit int) ([]PendingEvent, error)
	DeletePending(ctx context.Context, id uint) error
	RequeuePending(ctx context.Context, id uint, attempts int, nextRetryAt time.Time) error
}

type gormStore struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (Store, error) {
	g, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("Open: failed to connect to DB: %w", err)
	}

	if err := g.AutoMigrate(
		&Team{}, &Channel{}, &User{},
		&Message{}, &Reply{}, &Settings{}, &PendingEvent{},
	); err != nil {
		return nil, fmt.Errorf("Open: failed to migrate schema: %w", err)
	}

	return &gormStore{db: g}, nil
}
