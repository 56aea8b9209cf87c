package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	maskedUserName = "anonymous"
)

// HandleListChannels returns the archived channels of a team.
func (s *Server) HandleListChannels(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	channels, err := s.store.ListChannels(r.Context(), teamID)
	if err != nil {
		s.logger.Error("failed to list channels", "team", teamID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}

	out := make([]channelResponse, 0, len(channels))
	for _, channel := range channels {
		out = append(out, channelResponse{ChannelID: channel.ChannelID, Name: channel.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": out})
}

// HandleListMessages pages through a channel's root messages in descending
// insertion order.
//
// The cursor is a skip offset into that ordering. The store is asked for
// pageSize+1 rows; a full overfetch means another page exists, the extra row
// is trimmed and its offset becomes next_cursor. prev_cursor is
// cursor-pageSize clamped to the first page.
func (s *Server) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	channelID := chi.URLParam(r, "channelID")

	cursor := parseIntParam(r, "cursor", 0)
	if cursor < 0 {
		cursor = 0
	}
	pageSize := parseIntParam(r, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	rows, err := s.store.ListMessages(r.Context(), teamID, channelID, cursor, pageSize+1)
	if err != nil {
		s.logger.Error("failed to list messages", "team", teamID, "channel", channelID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	page := messagePage{}
	if len(rows) == pageSize+1 {
		rows = rows[:pageSize]
		next := cursor + pageSize
		page.NextCursor = &next
	}
	if cursor > 0 {
		prev := cursor - pageSize
		if prev < 0 {
			prev = 0
		}
		page.PrevCursor = &prev
	}

	mask, err := s.maskUserNames(r, teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	page.Messages = make([]messageResponse, 0, len(rows))
	for _, row := range rows {
		text, err := s.cipher.Decrypt(row.Text)
		if err != nil {
			s.logger.Error("failed to decrypt message", "team", teamID, "ts", row.Ts, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to decode messages")
			return
		}
		page.Messages = append(page.Messages, messageResponse{
			Ts:        row.Ts,
			UserName:  displayName(row.UserName, mask),
			Text:      text,
			CreatedAt: row.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleGetThread returns a root message and its replies in arrival order.
func (s *Server) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	channelID := chi.URLParam(r, "channelID")
	ts := chi.URLParam(r, "ts")

	message, err := s.store.GetMessage(r.Context(), teamID, channelID, ts)
	if err != nil {
		s.logger.Error("failed to fetch message", "team", teamID, "ts", ts, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch thread")
		return
	}
	if message == nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	replies, err := s.store.ListReplies(r.Context(), message.ID)
	if err != nil {
		s.logger.Error("failed to list replies", "team", teamID, "ts", ts, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch thread")
		return
	}

	mask, err := s.maskUserNames(r, teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	user, err := s.store.GetUser(r.Context(), teamID, message.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch thread")
		return
	}
	userName := ""
	if user != nil {
		userName = user.RealName
	}

	text, err := s.cipher.Decrypt(message.Text)
	if err != nil {
		s.logger.Error("failed to decrypt message", "team", teamID, "ts", ts, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to decode thread")
		return
	}

	out := threadResponse{
		Message: messageResponse{
			Ts:        message.Ts,
			UserName:  displayName(userName, mask),
			Text:      text,
			CreatedAt: message.CreatedAt,
		},
		Replies: make([]messageResponse, 0, len(replies)),
	}
	for _, reply := range replies {
		replyText, err := s.cipher.Decrypt(reply.Text)
		if err != nil {
			s.logger.Error("failed to decrypt reply", "team", teamID, "ts", reply.Ts, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to decode thread")
			return
		}
		out.Replies = append(out.Replies, messageResponse{
			Ts:        reply.Ts,
			UserName:  displayName(reply.UserName, mask),
			Text:      replyText,
			CreatedAt: reply.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleGetSettings returns a team's display preferences.
func (s *Server) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	settings, err := s.store.GetSettings(r.Context(), teamID)
	if err != nil {
		s.logger.Error("failed to fetch settings", "team", teamID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch settings")
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "team not found")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		TeamID:       settings.TeamID,
		MaskUserName: settings.MaskUserName,
	})
}

// HandleUpdateSettings updates a team's display preferences.
func (s *Server) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var req settingsUpdateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SaveSettings(r.Context(), teamID, req.MaskUserName); err != nil {
		s.logger.Error("failed to update settings", "team", teamID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{TeamID: teamID, MaskUserName: req.MaskUserName})
}

func (s *Server) maskUserNames(r *http.Request, teamID string) (bool, error) {
	settings, err := s.store.GetSettings(r.Context(), teamID)
	if err != nil {
		s.logger.Error("failed to fetch settings", "team", teamID, "err", err)
		return false, err
	}
	return settings != nil && settings.MaskUserName, nil
}

func displayName(name string, mask bool) string {
	if mask {
		return maskedUserName
	}
	return name
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
