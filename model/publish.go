package model

import (
	"time"

	"github.com/google/uuid"
)

type PublishState string

const (
	StateIdle       PublishState = "idle"
	StateGenerating PublishState = "generating"
	StateReady      PublishState = "ready"
	StateUploading  PublishState = "uploading"
	StateDone       PublishState = "done"
	StateError      PublishState = "error"
)

// ProgressFunc reports upload progress. bytesSent is non-decreasing and
// reaches bytesTotal only when the upload eventually succeeds. Progress is
// advisory; completion is signalled by the upload call returning.
type ProgressFunc func(bytesSent, bytesTotal int64)

// PublishAttempt bundles everything one upload call needs. It has no
// persisted identity; a retry builds a new attempt with a fresh asset stream.
type PublishAttempt struct {
	Asset    VideoAsset
	Metadata Metadata
	Token    Token

	// OnTokenRefresh is called when the transport refreshed the access token
	// mid-attempt, so the caller can persist the new pair. May be nil.
	OnTokenRefresh func(Token) error
}

// Attempt is the persisted record of a successful publish.
type Attempt struct {
	ID        uuid.UUID
	SessionID string
	VideoID   string
	Title     string
	CreatedAt time.Time
}
