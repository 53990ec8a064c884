package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/mvdbrink/pubtube/model"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const privacyStatus = "private"

// Uploader streams a video to YouTube under the caller's own account. One
// call is one attempt: there are no retries, no backoff and no resume beyond
// what the oauth2 transport does implicitly when it refreshes an expired
// access token.
type Uploader struct {
	oauth  *oauth2.Config
	logger *slog.Logger
	opts   []option.ClientOption
}

// NewUploader creates an Uploader that authorizes uploads with oauth. Extra
// client options are appended when the service is built, which lets tests
// point the uploader at a fake endpoint.
func NewUploader(oauth *oauth2.Config, logger *slog.Logger, opts ...option.ClientOption) *Uploader {
	return &Uploader{
		oauth:  oauth,
		logger: logger,
		opts:   opts,
	}
}

// Upload sends the attempt's video bytes and metadata to YouTube and returns
// the new video id. Preconditions are checked before any network I/O; a
// violated precondition never costs quota or bandwidth. The asset stream is
// consumed exactly once.
func (u *Uploader) Upload(ctx context.Context, attempt model.PublishAttempt, progress model.ProgressFunc) (string, error) {
	switch {
	case attempt.Token.Empty():
		return "", model.NewError(model.KindAuthorization, "no access token")
	case attempt.Metadata.Title == "":
		return "", model.NewError(model.KindPrecondition, "metadata is missing a title")
	case !attempt.Metadata.Resolved():
		return "", model.NewError(model.KindPrecondition, "metadata has no resolved category")
	case attempt.Asset.Data == nil:
		return "", model.NewError(model.KindPrecondition, "no video asset attached")
	}

	source := &persistingTokenSource{
		src:    u.oauth.TokenSource(ctx, toOAuth2(attempt.Token)),
		curr:   toOAuth2(attempt.Token),
		notify: attempt.OnTokenRefresh,
		logger: u.logger,
	}
	opts := append([]option.ClientOption{option.WithTokenSource(source)}, u.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return "", model.WrapError(model.KindTransport, "failed to create youtube service", err)
	}

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       attempt.Metadata.Title,
			Description: attempt.Metadata.Description,
			Tags:        attempt.Metadata.Tags,
			CategoryId:  attempt.Metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: privacyStatus},
	}

	media := attempt.Asset.Data
	if progress != nil {
		media = &progressReader{
			r:      attempt.Asset.Data,
			total:  attempt.Asset.Size,
			report: progress,
		}
	}

	u.logger.Info("uploading video",
		slog.String("title", attempt.Metadata.Title),
		slog.String("category", attempt.Metadata.CategoryID),
		slog.Int64("size", attempt.Asset.Size))

	vid, err := svc.Videos.
		Insert([]string{"snippet", "status"}, upload).
		Media(media, googleapi.ContentType(attempt.Asset.MIME)).
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err, "insert video")
	}

	// The last progress call equals (total, total) only on success.
	if progress != nil && attempt.Asset.Size > 0 {
		progress(attempt.Asset.Size, attempt.Asset.Size)
	}
	u.logger.Info("video uploaded", slog.String("videoid", vid.Id))

	return vid.Id, nil
}

// progressReader reports bytes as they are consumed from the underlying
// stream. Reads are sequential, so reported counts never decrease.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report model.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}

	return n, err
}

// classify converts transport and service failures into the publish error
// taxonomy. Every failure is terminal for the attempt.
func classify(err error, op string) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return model.WrapError(model.KindAuthorization, op+": token refresh rejected", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized:
			return model.WrapError(model.KindAuthorization, op+": token rejected", err)
		case gerr.Code >= 400 && gerr.Code < 500:
			return model.WrapError(model.KindServiceRejected, op+": rejected by service", err)
		}
	}

	return model.WrapError(model.KindTransport, op+" failed", err)
}
