package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/mvdbrink/pubtube/model"
	"github.com/mvdbrink/pubtube/publish"
	"github.com/mvdbrink/pubtube/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type fakeGenerator struct {
	md  model.Metadata
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (model.Metadata, error) {
	if f.err != nil {
		return model.Metadata{}, f.err
	}

	return f.md, nil
}

type fakeLister struct {
	list []model.Category
	err  error
}

func (f *fakeLister) List(_ context.Context) ([]model.Category, error) {
	return f.list, f.err
}

type fakeUploader struct {
	videoID string
	err     error
	calls   int
	last    model.PublishAttempt
}

func (f *fakeUploader) Upload(_ context.Context, attempt model.PublishAttempt, _ model.ProgressFunc) (string, error) {
	f.calls++
	f.last = attempt
	io.Copy(io.Discard, attempt.Asset.Data)
	if f.err != nil {
		return "", f.err
	}

	return f.videoID, nil
}

// anyTokenStore hands the same token to every session, which keeps the
// handler tests independent of cookie round trips.
type anyTokenStore struct {
	token model.Token
	found bool
}

func (s *anyTokenStore) Save(_ string, token model.Token) error {
	s.token, s.found = token, true

	return nil
}

func (s *anyTokenStore) Find(_ string) (model.Token, error) {
	if !s.found {
		return model.Token{}, storage.ErrNotFound
	}

	return s.token, nil
}

func (s *anyTokenStore) Delete(_ string) error {
	s.found = false

	return nil
}

type serverFixture struct {
	generator *fakeGenerator
	lister    *fakeLister
	uploader  *fakeUploader
	tokens    *anyTokenStore
	attempts  *storage.MemoryAttemptRepository
	server    *Server
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		generator: &fakeGenerator{
			md: model.Metadata{
				Title:       "Perfect Pasta in 10 Minutes",
				Description: "Cook pasta like a pro.",
				Tags:        []string{"pasta", "cooking"},
				Category:    "Howto & Style",
			},
		},
		lister: &fakeLister{
			list: []model.Category{
				{ID: "26", Title: "Howto & Style"},
				{ID: "10", Title: "Music"},
			},
		},
		uploader: &fakeUploader{videoID: "yt123"},
		tokens:   &anyTokenStore{},
		attempts: storage.NewMemoryAttemptRepository(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard))
	controllers := publish.NewSet(f.generator, f.lister, f.uploader, f.tokens, f.attempts, logger)
	oauthConfig := &oauth2.Config{
		ClientID:    "client-id",
		Endpoint:    google.Endpoint,
		RedirectURL: "http://localhost:8080/auth/callback",
		Scopes:      []string{"https://www.googleapis.com/auth/youtube.upload"},
	}
	sessions := NewSessionManager("test-secret")
	f.server = NewServer(controllers, f.lister, oauthConfig, f.tokens, f.attempts, sessions, logger)

	return f
}

func (f *serverFixture) signIn() {
	f.tokens.Save("", model.Token{AccessToken: "access", RefreshToken: "refresh"})
}

func multipartUpload(t *testing.T, mime string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="video"; filename="pasta.mp4"`)
	header.Set("Content-Type", mime)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("mp4 bytes"))
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("title", "Perfect Pasta in 10 Minutes"))
	require.NoError(t, writer.WriteField("description", "Cook pasta like a pro."))
	require.NoError(t, writer.WriteField("tags", `["pasta","cooking"]`))
	require.NoError(t, writer.WriteField("category", "26"))
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestServerIndex(t *testing.T) {
	f := newServerFixture()

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServerUnknownPath(t *testing.T) {
	f := newServerFixture()

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonsense", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("returns resolved metadata", func(t *testing.T) {
		f := newServerFixture()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"a cooking tutorial for pasta"}`))
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var md model.Metadata
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
		assert.Equal(t, "Perfect Pasta in 10 Minutes", md.Title)
		assert.Equal(t, "26", md.CategoryID)
	})

	t.Run("empty prompt is a bad request", func(t *testing.T) {
		f := newServerFixture()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":""}`))
		f.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generation failure returns an error body", func(t *testing.T) {
		f := newServerFixture()
		f.generator.err = model.NewError(model.KindGeneration, "model returned no text")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"a prompt"}`))
		f.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	})
}

func TestCategoriesEndpoint(t *testing.T) {
	f := newServerFixture()

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "26", resp[0].ID)
	assert.Equal(t, "Howto & Style", resp[0].Snippet.Title)
}

func TestUploadEndpoint(t *testing.T) {
	t.Run("uploads and returns the video id", func(t *testing.T) {
		f := newServerFixture()
		f.signIn()

		body, contentType := multipartUpload(t, "video/mp4")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Message string `json:"message"`
			VideoID string `json:"videoId"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "yt123", resp.VideoID)

		assert.Equal(t, 1, f.uploader.calls)
		assert.Equal(t, "Perfect Pasta in 10 Minutes", f.uploader.last.Metadata.Title)
		assert.Equal(t, []string{"pasta", "cooking"}, f.uploader.last.Metadata.Tags)
		assert.Equal(t, "26", f.uploader.last.Metadata.CategoryID)
		assert.Equal(t, "video/mp4", f.uploader.last.Asset.MIME)
	})

	t.Run("no stored token is unauthorized with zero upload calls", func(t *testing.T) {
		f := newServerFixture()

		body, contentType := multipartUpload(t, "video/mp4")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, f.uploader.calls)
	})

	t.Run("unsupported video type is rejected", func(t *testing.T) {
		f := newServerFixture()
		f.signIn()

		body, contentType := multipartUpload(t, "image/png")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, f.uploader.calls)
	})

	t.Run("missing video file is a bad request", func(t *testing.T) {
		f := newServerFixture()
		f.signIn()

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("title", "a title"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		rec := httptest.NewRecorder()
		f.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPublishStateEndpoint(t *testing.T) {
	f := newServerFixture()

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/publish/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State string `json:"state"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.StateIdle), resp.State)
	assert.Empty(t, resp.Error)
}

func TestAuthLoginRedirect(t *testing.T) {
	f := newServerFixture()

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "accounts.google.com")
	assert.Contains(t, location, "access_type=offline")
	assert.Contains(t, location, "prompt=consent")
	assert.Contains(t, location, "youtube.upload")
}
