package ingest

import (
	"context"
	"fmt"
	"time"

	"SlackArchive/db"
	"SlackArchive/slack"

	"github.com/google/uuid"
	log "github.com/inconshreveable/log15/v3"
)

// ProfileFetcher looks up display data on the remote platform. Satisfied by
// *slack.Client.
type ProfileFetcher interface {
	GetUserInfo(ctx context.Context, userID string) (*slack.UserInfo, error)
	GetChannelInfo(ctx context.Context, channelID string) (*slack.ChannelInfo, error)
}

// Resolver turns remote user/channel ids into local rows, creating them on
// first sight. The store's uniqueness constraint is the arbiter for
// concurrent first-sight creation: a conflicting insert means another writer
// already created the row, and we re-fetch theirs.
type Resolver struct {
	store  db.Store
	slack  ProfileFetcher
	logger log.Logger
}

func NewResolver(store db.Store, fetcher ProfileFetcher) *Resolver {
	return &Resolver{
		store:  store,
		slack:  fetcher,
		logger: log.New("module", "ingest"),
	}
}

func (r *Resolver) ResolveUser(ctx context.Context, teamID, userID string) (*db.User, error) {
	user, err := r.store.GetUser(ctx, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("ResolveUser: %w", err)
	}
	if user != nil {
		return user, nil
	}

	info, err := r.slack.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ResolveUser: %w", err)
	}

	row := &db.User{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    info.ID,
		RealName:  info.RealName,
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := r.store.CreateUser(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("ResolveUser: %w", err)
	}
	if inserted {
		r.logger.Info("created user on first sight", "team", teamID, "user", userID)
		return row, nil
	}

	// Lost the first-sight race; the winner's row is authoritative.
	user, err = r.store.GetUser(ctx, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("ResolveUser: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("ResolveUser: user %s in team %s vanished after insert conflict", userID, teamID)
	}
	return user, nil
}

func (r *Resolver) ResolveChannel(ctx context.Context, teamID, channelID string) (*db.Channel, error) {
	channel, err := r.store.GetChannel(ctx, teamID, channelID)
	if err != nil {
		return nil, fmt.Errorf("ResolveChannel: %w", err)
	}
	if channel != nil {
		return channel, nil
	}

	info, err := r.slack.GetChannelInfo(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("ResolveChannel: %w", err)
	}

	row := &db.Channel{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		ChannelID: info.ID,
		Name:      info.Name,
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := r.store.CreateChannel(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("ResolveChannel: %w", err)
	}
	if inserted {
		r.logger.Info("created channel on first sight", "team", teamID, "channel", channelID)
		return row, nil
	}

	channel, err = r.store.GetChannel(ctx, teamID, channelID)
	if err != nil {
		return nil, fmt.Errorf("ResolveChannel: %w", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("ResolveChannel: channel %s in team %s vanished after insert conflict", channelID, teamID)
	}
	return channel, nil
}
