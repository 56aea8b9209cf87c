package api

import (
	"encoding/json"
	"time"
)

// eventEnvelope is the outer shape of every Slack events-API request. Type
// discriminates the one-time url_verification handshake from recurring
// event_callback deliveries.
type eventEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    string          `json:"team_id"`
	Event     json.RawMessage `json:"event"`
}

type channelResponse struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
}

type messageResponse struct {
	Ts        string    `json:"ts"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type messagePage struct {
	Messages   []messageResponse `json:"messages"`
	NextCursor *int              `json:"next_cursor,omitempty"`
	PrevCursor *int              `json:"prev_cursor,omitempty"`
}

type threadResponse struct {
	Message messageResponse   `json:"message"`
	Replies []messageResponse `json:"replies"`
}

type settingsResponse struct {
	TeamID       string `json:"team_id"`
	MaskUserName bool   `json:"mask_user_name"`
}

type settingsUpdateRequest struct {
	MaskUserName bool `json:"mask_user_name"`
}
