package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Slack signs each webhook request with HMAC-SHA256 over
// "v0:<timestamp>:<raw body>" and declares the result in these headers.
// https://api.slack.com/authentication/verifying-requests-from-slack
const (
	timestampHeader = "X-Slack-Request-Timestamp"
	signatureHeader = "X-Slack-Signature"

	// Requests older or newer than this are rejected as possible replays.
	replayWindowSeconds = 300
)

// verifySlackSignature reports whether the request body genuinely came from
// Slack. Any malformed input is a rejection, never an error.
func verifySlackSignature(signingSecret string, body []byte, timestamp, signature string, now time.Time) bool {
	if timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > replayWindowSeconds {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// Constant-time compare, signatures are attacker-supplied.
	return hmac.Equal([]byte(expected), []byte(signature))
}
