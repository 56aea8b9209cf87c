package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"SlackArchive/db"
	"SlackArchive/utils"

	log "github.com/inconshreveable/log15/v3"
	"golang.org/x/sync/errgroup"
)

// ErrParentMissing marks a reply that arrived before its root message. The
// event is buffered and retried by the reconciler instead of being dropped.
var ErrParentMissing = errors.New("parent message not yet archived")

const initialRetryDelay = time.Minute

// MessageEvent is the inner "message" sub-event of an event_callback
// envelope, after the webhook has already been acknowledged.
type MessageEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	User     string `json:"user"`
	Ts       string `json:"ts"`
	Team     string `json:"team"`
	Channel  string `json:"channel"`
	ThreadTs string `json:"thread_ts"`
}

func (e *MessageEvent) validate() error {
	switch {
	case e.Text == "":
		return errors.New("missing text")
	case e.User == "":
		return errors.New("missing user")
	case e.Ts == "":
		return errors.New("missing ts")
	case e.Team == "":
		return errors.New("missing team")
	case e.Channel == "":
		return errors.New("missing channel")
	}
	return nil
}

// Pipeline normalizes a raw sub-event into Message/Reply rows. All entry
// points run after the webhook ack, so failures are recorded for out-of-band
// retry rather than surfaced to the caller.
type Pipeline struct {
	store    db.Store
	resolver *Resolver
	cipher   *utils.Cipher
	logger   log.Logger
}

func NewPipeline(store db.Store, resolver *Resolver, cipher *utils.Cipher) *Pipeline {
	return &Pipeline{
		store:    store,
		resolver: resolver,
		cipher:   cipher,
		logger:   log.New("module", "ingest"),
	}
}

// ProcessEvent classifies and ingests a raw sub-event. Malformed or
// irrelevant events are dropped silently; ingest failures are buffered as
// pending events for the reconciler.
func (p *Pipeline) ProcessEvent(ctx context.Context, raw json.RawMessage) error {
	event, ok := p.classify(raw)
	if !ok {
		return nil
	}

	if err := p.ingest(ctx, event); err != nil {
		p.logger.Error("ingest failed, buffering event for retry",
			"team", event.Team, "channel", event.Channel, "ts", event.Ts, "err", err)
		p.buffer(ctx, raw, event, err)
		return err
	}
	return nil
}

// ReprocessEvent re-runs a buffered sub-event. Unlike ProcessEvent it does
// not buffer again on failure; the reconciler owns the retry bookkeeping.
func (p *Pipeline) ReprocessEvent(ctx context.Context, raw json.RawMessage) error {
	event, ok := p.classify(raw)
	if !ok {
		return nil
	}
	return p.ingest(ctx, event)
}

func (p *Pipeline) classify(raw json.RawMessage) (*MessageEvent, bool) {
	var event MessageEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		p.logger.Warn("dropping undecodable sub-event", "err", err)
		return nil, false
	}
	if event.Type != "message" {
		return nil, false
	}
	// Edits, deletions and bot chatter are not new posts.
	if event.Subtype != "" || event.BotID != "" {
		return nil, false
	}
	if err := event.validate(); err != nil {
		p.logger.Warn("dropping message event with unknown data format", "err", err)
		return nil, false
	}
	return &event, true
}

func (p *Pipeline) ingest(ctx context.Context, event *MessageEvent) error {
	if err := p.store.EnsureTeam(ctx, event.Team); err != nil {
		return err
	}

	// User and channel lookups are independent, resolve them concurrently.
	var user *db.User
	var channel *db.Channel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolved, err := p.resolver.ResolveUser(gctx, event.Team, event.User)
		user = resolved
		return err
	})
	g.Go(func() error {
		resolved, err := p.resolver.ResolveChannel(gctx, event.Team, event.Channel)
		channel = resolved
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	text, err := p.cipher.Encrypt(event.Text)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	now := time.Now().UTC()
	if event.ThreadTs == "" {
		inserted, err := p.store.InsertMessage(ctx, &db.Message{
			TeamID:    event.Team,
			ChannelID: channel.ChannelID,
			Ts:        event.Ts,
			UserID:    user.UserID,
			Text:      text,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			p.logger.Info("duplicate message delivery ignored",
				"team", event.Team, "channel", event.Channel, "ts", event.Ts)
		}
		return nil
	}

	parent, err := p.store.GetMessage(ctx, event.Team, event.Channel, event.ThreadTs)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("ingest: reply %s in %s/%s: %w",
			event.Ts, event.Team, event.Channel, ErrParentMissing)
	}

	inserted, err := p.store.InsertReply(ctx, &db.Reply{
		TeamID:    event.Team,
		ChannelID: channel.ChannelID,
		Ts:        event.Ts,
		UserID:    user.UserID,
		Text:      text,
		MessageID: parent.ID,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}
	if !inserted {
		p.logger.Info("duplicate reply delivery ignored",
			"team", event.Team, "channel", event.Channel, "ts", event.Ts)
	}
	return nil
}

func (p *Pipeline) buffer(ctx context.Context, raw json.RawMessage, event *MessageEvent, cause error) {
	reason := "ingest_failed"
	if errors.Is(cause, ErrParentMissing) {
		reason = "parent_missing"
	}
	err := p.store.EnqueuePending(ctx, &db.PendingEvent{
		TeamID:      event.Team,
		Payload:     string(raw),
		Reason:      reason,
		Attempts:    0,
		NextRetryAt: time.Now().UTC().Add(initialRetryDelay),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		// Nothing left to do but log; the webhook was already acked.
		p.logger.Error("failed to buffer event, it is lost",
			"team", event.Team, "ts", event.Ts, "err", err)
	}
}
