package publish

import (
	"sync"

	"github.com/mvdbrink/pubtube/generate"
	"github.com/mvdbrink/pubtube/storage"
	"golang.org/x/exp/slog"
)

// Set hands out one controller per session, created on first use. Each
// session has at most one publish attempt in flight.
type Set struct {
	generator  generate.Generator
	categories CategoryLister
	uploader   Uploader
	tokens     storage.TokenStore
	attempts   storage.AttemptRepository
	logger     *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewSet(generator generate.Generator, categories CategoryLister, uploader Uploader, tokens storage.TokenStore, attempts storage.AttemptRepository, logger *slog.Logger) *Set {
	return &Set{
		generator:   generator,
		categories:  categories,
		uploader:    uploader,
		tokens:      tokens,
		attempts:    attempts,
		logger:      logger,
		controllers: map[string]*Controller{},
	}
}

func (s *Set) Get(sessionID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	controller, ok := s.controllers[sessionID]
	if !ok {
		controller = NewController(sessionID, s.generator, s.categories, s.uploader, s.tokens, s.attempts, s.logger)
		s.controllers[sessionID] = controller
	}

	return controller
}
