package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"SlackArchive/db"
	"SlackArchive/slack"
)

// fakeStore is an in-memory db.Store that enforces the same natural-key
// uniqueness the Postgres schema does, so race and idempotency behavior can
// be exercised without a database.
type fakeStore struct {
	mu sync.Mutex

	teams    map[string]bool
	settings map[string]*db.Settings
	users    map[string]*db.User
	channels map[string]*db.Channel
	messages map[string]*db.Message
	replies  map[string]*db.Reply
	pending  map[uint]*db.PendingEvent

	nextMessageID uint
	nextReplyID   uint
	nextPendingID uint

	insertMessageErr error
	createUserHook   func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:    map[string]bool{},
		settings: map[string]*db.Settings{},
		users:    map[string]*db.User{},
		channels: map[string]*db.Channel{},
		messages: map[string]*db.Message{},
		replies:  map[string]*db.Reply{},
		pending:  map[uint]*db.PendingEvent{},
	}
}

func naturalKey(parts ...string) string {
	key := parts[0]
	for _, part := range parts[1:] {
		key += "|" + part
	}
	return key
}

func (s *fakeStore) EnsureTeam(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[teamID] = true
	if _, ok := s.settings[teamID]; !ok {
		s.settings[teamID] = &db.Settings{TeamID: teamID}
	}
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, teamID, userID string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[naturalKey(teamID, userID)]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateUser(_ context.Context, user *db.User) (bool, error) {
	if s.createUserHook != nil {
		s.createUserHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := naturalKey(user.TeamID, user.UserID)
	if _, ok := s.users[key]; ok {
		return false, nil
	}
	copied := *user
	s.users[key] = &copied
	return true, nil
}

func (s *fakeStore) GetChannel(_ context.Context, teamID, channelID string) (*db.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel, ok := s.channels[naturalKey(teamID, channelID)]; ok {
		copied := *channel
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateChannel(_ context.Context, channel *db.Channel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := naturalKey(channel.TeamID, channel.ChannelID)
	if _, ok := s.channels[key]; ok {
		return false, nil
	}
	copied := *channel
	s.channels[key] = &copied
	return true, nil
}

func (s *fakeStore) GetMessage(_ context.Context, teamID, channelID, ts string) (*db.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message, ok := s.messages[naturalKey(teamID, channelID, ts)]; ok {
		copied := *message
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) InsertMessage(_ context.Context, message *db.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertMessageErr != nil {
		return false, s.insertMessageErr
	}
	key := naturalKey(message.TeamID, message.ChannelID, message.Ts)
	if _, ok := s.messages[key]; ok {
		return false, nil
	}
	s.nextMessageID++
	copied := *message
	copied.ID = s.nextMessageID
	s.messages[key] = &copied
	return true, nil
}

func (s *fakeStore) InsertReply(_ context.Context, reply *db.Reply) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := naturalKey(reply.TeamID, reply.ChannelID, reply.Ts)
	if _, ok := s.replies[key]; ok {
		return false, nil
	}
	s.nextReplyID++
	copied := *reply
	copied.ID = s.nextReplyID
	s.replies[key] = &copied
	return true, nil
}

func (s *fakeStore) ListChannels(_ context.Context, teamID string) ([]db.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Channel
	for _, channel := range s.channels {
		if channel.TeamID == teamID {
			out = append(out, *channel)
		}
	}
	return out, nil
}

func (s *fakeStore) ListMessages(_ context.Context, teamID, channelID string, skip, limit int) ([]db.MessageWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*db.Message
	for _, message := range s.messages {
		if message.TeamID == teamID && message.ChannelID == channelID {
			all = append(all, message)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	var out []db.MessageWithUser
	for i := skip; i < len(all) && len(out) < limit; i++ {
		m := all[i]
		out = append(out, db.MessageWithUser{
			ID: m.ID, TeamID: m.TeamID, ChannelID: m.ChannelID,
			Ts: m.Ts, UserID: m.UserID, Text: m.Text, CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (s *fakeStore) ListReplies(_ context.Context, messageID uint) ([]db.ReplyWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*db.Reply
	for _, reply := range s.replies {
		if reply.MessageID == messageID {
			all = append(all, reply)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	var out []db.ReplyWithUser
	for _, r := range all {
		out = append(out, db.ReplyWithUser{
			ID: r.ID, TeamID: r.TeamID, ChannelID: r.ChannelID,
			Ts: r.Ts, UserID: r.UserID, Text: r.Text, MessageID: r.MessageID, CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *fakeStore) GetSettings(_ context.Context, teamID string) (*db.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings, ok := s.settings[teamID]; ok {
		copied := *settings
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) SaveSettings(_ context.Context, teamID string, maskUserName bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[teamID]
	if !ok {
		return errors.New("no settings row")
	}
	settings.MaskUserName = maskUserName
	return nil
}

func (s *fakeStore) EnqueuePending(_ context.Context, event *db.PendingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPendingID++
	copied := *event
	copied.ID = s.nextPendingID
	s.pending[copied.ID] = &copied
	return nil
}

func (s *fakeStore) DuePendingEvents(_ context.Context, now time.Time, limit int) ([]db.PendingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.PendingEvent
	for _, event := range s.pending {
		if !event.NextRetryAt.After(now) && len(out) < limit {
			out = append(out, *event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) DeletePending(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	return nil
}

func (s *fakeStore) RequeuePending(_ context.Context, id uint, attempts int, nextRetryAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.pending[id]
	if !ok {
		return fmt.Errorf("pending event %d not found", id)
	}
	event.Attempts = attempts
	event.NextRetryAt = nextRetryAt
	return nil
}

func (s *fakeStore) pendingEvents() []db.PendingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.PendingEvent
	for _, event := range s.pending {
		out = append(out, *event)
	}
	return out
}

// fakeFetcher is a ProfileFetcher that fabricates profiles and counts calls.
type fakeFetcher struct {
	mu           sync.Mutex
	userCalls    int
	channelCalls int
	userErr      error
	channelErr   error
}

func (f *fakeFetcher) GetUserInfo(_ context.Context, userID string) (*slack.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &slack.UserInfo{ID: userID, RealName: "Jane Doe"}, nil
}

func (f *fakeFetcher) GetChannelInfo(_ context.Context, channelID string) (*slack.ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelCalls++
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &slack.ChannelInfo{ID: channelID, Name: "general", IsChannel: true}, nil
}
