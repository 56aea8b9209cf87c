package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://slack.com/api"
	requestTimeout = 10 * time.Second
)

// Client calls the Slack Web API with the workspace bot token.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake API.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// GetUserInfo fetches the profile of a user by its Slack id.
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	var result userInfoResponse
	if err := c.get(ctx, "users.info", url.Values{"user": {userID}}, &result); err != nil {
		return nil, fmt.Errorf("GetUserInfo: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("GetUserInfo: slack api error: %s", result.Error)
	}
	if result.User.ID == "" || result.User.RealName == "" {
		return nil, fmt.Errorf("GetUserInfo: malformed user payload for %s", userID)
	}
	return &result.User, nil
}

// GetChannelInfo fetches the metadata of a channel by its Slack id.
func (c *Client) GetChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	var result channelInfoResponse
	if err := c.get(ctx, "conversations.info", url.Values{"channel": {channelID}}, &result); err != nil {
		return nil, fmt.Errorf("GetChannelInfo: %w", err)
	}
	if !result.Ok {
		return nil, fmt.Errorf("GetChannelInfo: slack api error: %s", result.Error)
	}
	if result.Channel.ID == "" || result.Channel.Name == "" || !result.Channel.IsChannel {
		return nil, fmt.Errorf("GetChannelInfo: malformed channel payload for %s", channelID)
	}
	return &result.Channel, nil
}

func (c *Client) get(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Slack API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API responded with status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
