package db

import "time"

// Team is created implicitly the first time an event for its workspace is
// seen. TeamID is the Slack workspace id.
type Team struct {
	ID        uint   `gorm:"primaryKey"`
	TeamID    string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// Channel is created lazily from conversations.info on first sight.
// (TeamID, ChannelID) is the natural key.
type Channel struct {
	ID        string `gorm:"primaryKey"`
	TeamID    string `gorm:"uniqueIndex:idx_channels_natural_key;not null"`
	ChannelID string `gorm:"uniqueIndex:idx_channels_natural_key;not null"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

// User is created lazily from users.info on first sight.
// (TeamID, UserID) is the natural key.
type User struct {
	ID        string `gorm:"primaryKey"`
	TeamID    string `gorm:"uniqueIndex:idx_users_natural_key;not null"`
	UserID    string `gorm:"uniqueIndex:idx_users_natural_key;not null"`
	RealName  string `gorm:"not null"`
	CreatedAt time.Time
}

// Message is a root channel post. (TeamID, ChannelID, Ts) is the natural key
// and the unique constraint that makes ingestion idempotent. ID is
// auto-incremented, so it doubles as the stable sort key for pagination.
// Text is AES-GCM encrypted at rest.
type Message struct {
	ID        uint   `gorm:"primaryKey"`
	TeamID    string `gorm:"uniqueIndex:idx_messages_natural_key;not null"`
	ChannelID string `gorm:"uniqueIndex:idx_messages_natural_key;not null"`
	Ts        string `gorm:"uniqueIndex:idx_messages_natural_key;not null"`
	UserID    string `gorm:"not null"`
	Text      string `gorm:"not null"`
	CreatedAt time.Time
}

// Reply belongs to the Message whose Ts equals the reply's thread_ts.
type Reply struct {
	ID        uint   `gorm:"primaryKey"`
	TeamID    string `gorm:"uniqueIndex:idx_replies_natural_key;not null"`
	ChannelID string `gorm:"uniqueIndex:idx_replies_natural_key;not null"`
	Ts        string `gorm:"uniqueIndex:idx_replies_natural_key;not null"`
	UserID    string `gorm:"not null"`
	Text      string `gorm:"not null"`
	MessageID uint   `gorm:"index;not null"`
	CreatedAt time.Time
}

// Settings holds per-team display preferences. One row per team, created
// with the team.
type Settings struct {
	ID           uint   `gorm:"primaryKey"`
	TeamID       string `gorm:"uniqueIndex;not null"`
	MaskUserName bool   `gorm:"not null;default:false"`
	UpdatedAt    time.Time
}

// PendingEvent is a message sub-event that could not be ingested after the
// webhook was already acknowledged (orphan reply, profile lookup failure,
// store outage). The reconciler retries these out of band.
type PendingEvent struct {
	ID          uint   `gorm:"primaryKey"`
	TeamID      string `gorm:"index"`
	Payload     string `gorm:"not null"`
	Reason      string
	Attempts    int       `gorm:"not null;default:0"`
	NextRetryAt time.Time `gorm:"index"`
	CreatedAt   time.Time
}

// MessageWithUser is a Message row joined with the sender's display name for
// the read API.
type MessageWithUser struct {
	ID        uint
	TeamID    string
	ChannelID string
	Ts        string
	UserID    string
	UserName  string
	Text      string
	CreatedAt time.Time
}

// ReplyWithUser is a Reply row joined with the sender's display name.
type ReplyWithUser struct {
	ID        uint
	TeamID    string
	ChannelID string
	Ts        string
	UserID    string
	UserName  string
	Text      string
	MessageID uint
	CreatedAt time.Time
}
