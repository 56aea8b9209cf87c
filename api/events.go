package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// HandleSlackEvents is the webhook Slack delivers workspace events to.
//
// Slack retries any delivery not acknowledged within 3 seconds, so for
// event_callback envelopes the 200 "OK" is written before any store write or
// profile fetch happens; ingestion continues on a detached goroutine and
// duplicate deliveries are absorbed by the store's natural-key constraints.
// The url_verification handshake is the one case where the response body
// itself carries the payload and must be written synchronously.
func (s *Server) HandleSlackEvents(w http.ResponseWriter, r *http.Request) {
	// Slack only POSTs to the event url.
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read request body", http.StatusBadRequest)
		return
	}

	if !verifySlackSignature(s.signingSecret, body,
		r.Header.Get(timestampHeader), r.Header.Get(signatureHeader), s.now()) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// A signed but undecodable body is Slack's problem, not a server
		// error. Ack it so Slack does not retry.
		s.logger.Warn("dropping undecodable event body", "err", err)
		s.ack(w)
		return
	}

	switch envelope.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(envelope.Challenge))

	case "event_callback":
		s.ack(w)
		raw := envelope.Event
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()
			if err := s.processor.ProcessEvent(ctx, raw); err != nil {
				s.logger.Error("event processing failed after ack", "err", err)
			}
		}()

	default:
		// Unrecognized envelope types are not errors.
		s.ack(w)
	}
}

// ack pushes the 200 "OK" onto the wire so Slack's 3 second deadline is met
// regardless of how long ingestion takes afterwards.
func (s *Server) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("OK"))
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
