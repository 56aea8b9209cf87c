package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"SlackArchive/db"
	"SlackArchive/utils"

	log "github.com/inconshreveable/log15/v3"
)

const processTimeout = 30 * time.Second

// EventProcessor ingests a raw message sub-event. Satisfied by
// *ingest.Pipeline.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, raw json.RawMessage) error
}

// Server carries the HTTP surface: the Slack events webhook and the read API
// consumed by the archive UI.
type Server struct {
	store         db.Store
	processor     EventProcessor
	cipher        *utils.Cipher
	signingSecret string
	now           func() time.Time
	logger        log.Logger
}

func NewServer(store db.Store, processor EventProcessor, cipher *utils.Cipher, signingSecret string) *Server {
	return &Server{
		store:         store,
		processor:     processor,
		cipher:        cipher,
		signingSecret: signingSecret,
		now:           time.Now,
		logger:        log.New("module", "api"),
	}
}

func (s *Server) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func decodeJSONBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
