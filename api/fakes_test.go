package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"SlackArchive/db"

	"github.com/go-chi/chi/v5"
)

// fakeStore is an in-memory db.Store for handler tests.
type fakeStore struct {
	mu sync.Mutex

	settings map[string]*db.Settings
	users    map[string]*db.User
	channels []db.Channel
	messages []db.MessageWithUser
	replies  []db.ReplyWithUser
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: map[string]*db.Settings{},
		users:    map[string]*db.User{},
	}
}

func (s *fakeStore) EnsureTeam(context.Context, string) error { return nil }

func (s *fakeStore) GetUser(_ context.Context, teamID, userID string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[teamID+"|"+userID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateUser(context.Context, *db.User) (bool, error) { return false, nil }

func (s *fakeStore) GetChannel(context.Context, string, string) (*db.Channel, error) {
	return nil, nil
}

func (s *fakeStore) CreateChannel(context.Context, *db.Channel) (bool, error) { return false, nil }

func (s *fakeStore) GetMessage(_ context.Context, teamID, channelID, ts string) (*db.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.messages {
		if row.TeamID == teamID && row.ChannelID == channelID && row.Ts == ts {
			return &db.Message{
				ID: row.ID, TeamID: row.TeamID, ChannelID: row.ChannelID,
				Ts: row.Ts, UserID: row.UserID, Text: row.Text, CreatedAt: row.CreatedAt,
			}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertMessage(context.Context, *db.Message) (bool, error) { return false, nil }
func (s *fakeStore) InsertReply(context.Context, *db.Reply) (bool, error)     { return false, nil }

func (s *fakeStore) ListChannels(_ context.Context, teamID string) ([]db.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Channel
	for _, channel := range s.channels {
		if channel.TeamID == teamID {
			out = append(out, channel)
		}
	}
	return out, nil
}

func (s *fakeStore) ListMessages(_ context.Context, teamID, channelID string, skip, limit int) ([]db.MessageWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []db.MessageWithUser
	for _, row := range s.messages {
		if row.TeamID == teamID && row.ChannelID == channelID {
			all = append(all, row)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	var out []db.MessageWithUser
	for i := skip; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *fakeStore) ListReplies(_ context.Context, messageID uint) ([]db.ReplyWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.ReplyWithUser
	for _, reply := range s.replies {
		if reply.MessageID == messageID {
			out = append(out, reply)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
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

func (s *fakeStore) EnqueuePending(context.Context, *db.PendingEvent) error { return nil }

func (s *fakeStore) DuePendingEvents(context.Context, time.Time, int) ([]db.PendingEvent, error) {
	return nil, nil
}

func (s *fakeStore) DeletePending(context.Context, uint) error { return nil }

func (s *fakeStore) RequeuePending(context.Context, uint, int, time.Time) error {
	return nil
}

// fakeProcessor records events handed off by the webhook handler.
type fakeProcessor struct {
	events chan json.RawMessage
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{events: make(chan json.RawMessage, 8)}
}

func (p *fakeProcessor) ProcessEvent(_ context.Context, raw json.RawMessage) error {
	p.events <- raw
	return nil
}

func newTestRouter(srv *Server) http.Handler {
	r := chi.NewRouter()
	r.HandleFunc("/api/v1/slack/events", srv.HandleSlackEvents)
	r.Route("/api/v1/teams/{teamID}", func(r chi.Router) {
		r.Get("/channels", srv.HandleListChannels)
		r.Get("/channels/{channelID}/messages", srv.HandleListMessages)
		r.Get("/channels/{channelID}/messages/{ts}", srv.HandleGetThread)
		r.Get("/settings", srv.HandleGetSettings)
		r.Put("/settings", srv.HandleUpdateSettings)
	})
	return r
}
