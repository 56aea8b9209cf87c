package slack

// UserInfo is the subset of a users.info response the archive cares about.
type UserInfo struct {
	ID       string `json:"id"`
	RealName string `json:"real_name"`
}

// ChannelInfo is the subset of a conversations.info response the archive
// cares about.
type ChannelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsChannel bool   `json:"is_channel"`
}

type userInfoResponse struct {
	Ok    bool     `json:"ok"`
	Error string   `json:"error"`
	User  UserInfo `json:"user"`
}

type channelInfoResponse struct {
	Ok      bool        `json:"ok"`
	Error   string      `json:"error"`
	Channel ChannelInfo `json:"channel"`
}
