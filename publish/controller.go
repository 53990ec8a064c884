package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mvdbrink/pubtube/generate"
	"github.com/mvdbrink/pubtube/model"
	"github.com/mvdbrink/pubtube/storage"
	"github.com/mvdbrink/pubtube/youtube"
	"golang.org/x/exp/slog"
)

// AssetSource produces a fresh single-use byte stream over the same video
// bytes. Upload streams are consumed exactly once, so a retry opens a new
// stream instead of rewinding the old one.
type AssetSource interface {
	Open() (io.ReadCloser, error)
	MIME() string
	Size() int64
}

// CategoryLister provides the category list used to resolve labels.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// Uploader performs one upload attempt.
type Uploader interface {
	Upload(ctx context.Context, attempt model.PublishAttempt, progress model.ProgressFunc) (string, error)
}

// Controller owns one publish cycle for one user session:
// idle -> generating -> ready -> uploading -> done, with error reachable
// from generating and uploading. It never retries on its own; retry is an
// explicit, caller-triggered transition.
type Controller struct {
	sessionID  string
	generator  generate.Generator
	categories CategoryLister
	uploader   Uploader
	tokens     storage.TokenStore
	attempts   storage.AttemptRepository
	logger     *slog.Logger

	mu          sync.Mutex
	state       model.PublishState
	prompt      string
	metadata    model.Metadata
	asset       AssetSource
	videoID     string
	lastErr     error
	failedStage model.PublishState
}

func NewController(sessionID string, generator generate.Generator, categories CategoryLister, uploader Uploader, tokens storage.TokenStore, attempts storage.AttemptRepository, logger *slog.Logger) *Controller {
	return &Controller{
		sessionID:  sessionID,
		generator:  generator,
		categories: categories,
		uploader:   uploader,
		tokens:     tokens,
		attempts:   attempts,
		logger:     logger,
		state:      model.StateIdle,
	}
}

func (c *Controller) State() model.PublishState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// LastError returns the most recent failure, or nil. A new attempt clears it.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

func (c *Controller) Metadata() model.Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.metadata
}

// VideoID returns the remote id of the last successful publish.
func (c *Controller) VideoID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.videoID
}

// SubmitPrompt generates metadata for prompt and resolves its category.
// Generation completes strictly before any upload can begin.
func (c *Controller) SubmitPrompt(ctx context.Context, prompt string) (model.Metadata, error) {
	c.mu.Lock()
	if c.state == model.StateGenerating || c.state == model.StateUploading {
		c.mu.Unlock()
		return model.Metadata{}, model.NewError(model.KindInvalidTransition, fmt.Sprintf("cannot generate while %s", c.state))
	}
	c.state = model.StateGenerating
	c.prompt = prompt
	c.lastErr = nil
	c.mu.Unlock()

	md, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.fail(model.StateGenerating, err)
		return model.Metadata{}, err
	}

	list, err := c.categories.List(ctx)
	if err != nil {
		c.fail(model.StateGenerating, err)
		return model.Metadata{}, err
	}
	md.CategoryID = youtube.Resolve(md.Category, list)
	if md.CategoryID == "" {
		c.logger.Info("category label did not resolve", slog.String("label", md.Category))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = md
	c.state = model.StateReady

	return md, nil
}

// Stage accepts externally finalized metadata, e.g. generated fields the
// user edited before confirming, and moves the controller to ready.
func (c *Controller) Stage(md model.Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == model.StateGenerating || c.state == model.StateUploading {
		return model.NewError(model.KindInvalidTransition, fmt.Sprintf("cannot stage metadata while %s", c.state))
	}
	c.metadata = md
	c.lastErr = nil
	c.state = model.StateReady

	return nil
}

// AttachAsset binds the video source for the next upload. The source is kept
// across a failed upload so a retry can open a fresh stream.
func (c *Controller) AttachAsset(src AssetSource) error {
	if !model.AllowedMIME(src.MIME()) {
		return model.NewError(model.KindPrecondition, fmt.Sprintf("unsupported video type %q", src.MIME()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == model.StateUploading {
		return model.NewError(model.KindInvalidTransition, "cannot replace asset while uploading")
	}
	c.asset = src

	return nil
}

// RequestUpload runs one upload attempt. Missing requirements reject the
// transition synchronously without a state change; only a started attempt
// can move the controller to done or error.
func (c *Controller) RequestUpload(ctx context.Context, progress model.ProgressFunc) (string, error) {
	c.mu.Lock()
	permitted := c.state == model.StateReady ||
		(c.state == model.StateError && c.failedStage == model.StateUploading)
	if !permitted {
		c.mu.Unlock()
		return "", model.NewError(model.KindInvalidTransition, fmt.Sprintf("cannot upload while %s", c.state))
	}

	// Fast-fail validation, no state change.
	var reject error
	switch {
	case c.asset == nil:
		reject = model.NewError(model.KindPrecondition, "no video attached")
	case c.metadata.Title == "":
		reject = model.NewError(model.KindPrecondition, "metadata is missing a title")
	case !c.metadata.Resolved():
		reject = model.NewError(model.KindPrecondition, "category is not resolved, selection required")
	}
	if reject != nil {
		c.mu.Unlock()
		return "", reject
	}

	token, err := c.tokens.Find(c.sessionID)
	if err != nil || token.Empty() {
		c.mu.Unlock()
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return "", model.WrapError(model.KindTransport, "failed to read token", err)
		}
		return "", model.NewError(model.KindAuthorization, "not signed in")
	}

	metadata, asset := c.metadata, c.asset
	c.state = model.StateUploading
	c.lastErr = nil
	c.mu.Unlock()

	stream, err := asset.Open()
	if err != nil {
		err = model.WrapError(model.KindPrecondition, "failed to open video stream", err)
		c.fail(model.StateUploading, err)
		return "", err
	}
	defer stream.Close()

	attempt := model.PublishAttempt{
		Asset: model.VideoAsset{
			MIME: asset.MIME(),
			Size: asset.Size(),
			Data: stream,
		},
		Metadata: metadata,
		Token:    token,
		OnTokenRefresh: func(refreshed model.Token) error {
			return c.tokens.Save(c.sessionID, refreshed)
		},
	}

	videoID, err := c.uploader.Upload(ctx, attempt, progress)
	if err != nil {
		// Metadata and asset source survive, the user can retry without
		// re-entering the prompt.
		c.fail(model.StateUploading, err)
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = model.StateDone
	c.videoID = videoID
	c.metadata = model.Metadata{}
	c.asset = nil
	c.prompt = ""

	record := model.Attempt{
		ID:        uuid.New(),
		SessionID: c.sessionID,
		VideoID:   videoID,
		Title:     metadata.Title,
		CreatedAt: time.Now(),
	}
	if err := c.attempts.Record(record); err != nil {
		c.logger.Error("failed to record publish attempt", err)
	}

	return videoID, nil
}

// Retry re-runs the failed stage: a generation failure re-submits the stored
// prompt, an upload failure re-runs the upload with a fresh asset stream.
func (c *Controller) Retry(ctx context.Context, progress model.ProgressFunc) error {
	c.mu.Lock()
	if c.state != model.StateError {
		c.mu.Unlock()
		return model.NewError(model.KindInvalidTransition, fmt.Sprintf("nothing to retry while %s", c.state))
	}
	stage, prompt := c.failedStage, c.prompt
	c.mu.Unlock()

	if stage == model.StateGenerating {
		_, err := c.SubmitPrompt(ctx, prompt)
		return err
	}
	_, err := c.RequestUpload(ctx, progress)

	return err
}

// Reset discards the working metadata, asset and error and returns to idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == model.StateGenerating || c.state == model.StateUploading {
		return model.NewError(model.KindInvalidTransition, fmt.Sprintf("cannot reset while %s", c.state))
	}
	c.state = model.StateIdle
	c.prompt = ""
	c.metadata = model.Metadata{}
	c.asset = nil
	c.videoID = ""
	c.lastErr = nil
	c.failedStage = ""

	return nil
}

func (c *Controller) fail(stage model.PublishState, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = model.StateError
	c.failedStage = stage
	c.lastErr = err
	c.logger.Error("publish attempt failed", err, slog.String("stage", string(stage)))
}
