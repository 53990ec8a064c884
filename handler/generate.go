package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mvdbrink/pubtube/model"
	"github.com/mvdbrink/pubtube/publish"
	"golang.org/x/exp/slog"
)

type GenerateAPI struct {
	controllers *publish.Set
	sessions    *SessionManager
	logger      *slog.Logger
}

func NewGenerateAPI(controllers *publish.Set, sessions *SessionManager, logger *slog.Logger) *GenerateAPI {
	return &GenerateAPI{
		controllers: controllers,
		sessions:    sessions,
		logger:      logger,
	}
}

func (g *GenerateAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)
	if r.Method != http.MethodPost || head != "" {
		Error(w, http.StatusNotFound, fmt.Errorf("method %s with subpath %q was not registered in the generate api", r.Method, head))
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, fmt.Errorf("could not decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		Error(w, http.StatusBadRequest, model.NewError(model.KindPrecondition, "prompt is empty"))
		return
	}

	controller := g.controllers.Get(g.sessions.ID(w, r))
	metadata, err := controller.SubmitPrompt(r.Context(), req.Prompt)
	if err != nil {
		g.logger.Error("metadata generation failed", err)
		Error(w, statusFor(err), err)
		return
	}

	JSON(w, http.StatusOK, metadata)
}
