package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mvdbrink/pubtube/publish"
	"github.com/mvdbrink/pubtube/storage"
	"golang.org/x/exp/slog"
)

// PublishAPI exposes the controller's state to the UI: the current phase,
// the most recent error as a single line, and past publishes.
type PublishAPI struct {
	controllers *publish.Set
	attempts    storage.AttemptRepository
	sessions    *SessionManager
	logger      *slog.Logger
}

func NewPublishAPI(controllers *publish.Set, attempts storage.AttemptRepository, sessions *SessionManager, logger *slog.Logger) *PublishAPI {
	return &PublishAPI{
		controllers: controllers,
		attempts:    attempts,
		sessions:    sessions,
		logger:      logger,
	}
}

func (p *PublishAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && head == "state":
		p.State(w, r)
	case r.Method == http.MethodGet && head == "attempts":
		p.Attempts(w, r)
	case r.Method == http.MethodPost && head == "reset":
		p.Reset(w, r)
	default:
		Error(w, http.StatusNotFound, fmt.Errorf("method %s with subpath %q was not registered in the publish api", r.Method, head))
	}
}

func (p *PublishAPI) State(w http.ResponseWriter, r *http.Request) {
	controller := p.controllers.Get(p.sessions.ID(w, r))

	resp := struct {
		State   string `json:"state"`
		Error   string `json:"error,omitempty"`
		VideoID string `json:"videoId,omitempty"`
	}{
		State:   string(controller.State()),
		VideoID: controller.VideoID(),
	}
	if err := controller.LastError(); err != nil {
		resp.Error = err.Error()
	}

	JSON(w, http.StatusOK, resp)
}

func (p *PublishAPI) Attempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := p.attempts.FindBySession(p.sessions.ID(w, r))
	if err != nil {
		p.logger.Error("failed to list attempts", err)
		Error(w, http.StatusInternalServerError, fmt.Errorf("could not list attempts"))
		return
	}

	type respAttempt struct {
		VideoID   string    `json:"videoId"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"createdAt"`
	}
	resp := make([]respAttempt, 0, len(attempts))
	for _, attempt := range attempts {
		resp = append(resp, respAttempt{
			VideoID:   attempt.VideoID,
			Title:     attempt.Title,
			CreatedAt: attempt.CreatedAt,
		})
	}

	JSON(w, http.StatusOK, resp)
}

func (p *PublishAPI) Reset(w http.ResponseWriter, r *http.Request) {
	controller := p.controllers.Get(p.sessions.ID(w, r))
	if err := controller.Reset(); err != nil {
		Error(w, statusFor(err), err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"message": "reset"})
}
