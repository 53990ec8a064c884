package storage

import (
	"errors"

	"github.com/mvdbrink/pubtube/model"
)

var ErrNotFound = errors.New("not found")

// TokenStore holds the OAuth token pair per user session. The upload
// pipeline only reads tokens; writes happen at sign-in and when the
// transport refreshes a pair mid-upload.
type TokenStore interface {
	Save(sessionID string, token model.Token) error
	Find(sessionID string) (model.Token, error)
	Delete(sessionID string) error
}

// AttemptRepository records completed publishes.
type AttemptRepository interface {
	Record(attempt model.Attempt) error
	FindBySession(sessionID string) ([]model.Attempt, error)
}
