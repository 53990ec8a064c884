package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mvdbrink/pubtube/model"
	"github.com/mvdbrink/pubtube/publish"
	"golang.org/x/exp/slog"
)

// maxFormMemory bounds how much of the multipart body is held in memory;
// anything larger spills to temp files, which keeps big videos off the heap.
const maxFormMemory = 32 << 20

type UploadAPI struct {
	controllers *publish.Set
	sessions    *SessionManager
	logger      *slog.Logger
}

func NewUploadAPI(controllers *publish.Set, sessions *SessionManager, logger *slog.Logger) *UploadAPI {
	return &UploadAPI{
		controllers: controllers,
		sessions:    sessions,
		logger:      logger,
	}
}

func (u *UploadAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)
	if r.Method != http.MethodPost || head != "" {
		Error(w, http.StatusNotFound, fmt.Errorf("method %s with subpath %q was not registered in the upload api", r.Method, head))
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		Error(w, http.StatusBadRequest, fmt.Errorf("could not parse form: %w", err))
		return
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		Error(w, http.StatusBadRequest, model.NewError(model.KindPrecondition, "video file is required"))
		return
	}
	defer file.Close()

	tags := []string{}
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			Error(w, http.StatusBadRequest, fmt.Errorf("tags is not a JSON list: %w", err))
			return
		}
	}
	metadata := model.Metadata{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        tags,
		CategoryID:  r.FormValue("category"),
	}

	controller := u.controllers.Get(u.sessions.ID(w, r))
	if err := controller.Stage(metadata); err != nil {
		Error(w, statusFor(err), err)
		return
	}
	asset := &formAsset{
		file: file,
		mime: header.Header.Get("Content-Type"),
		size: header.Size,
	}
	if err := controller.AttachAsset(asset); err != nil {
		Error(w, statusFor(err), err)
		return
	}

	videoID, err := controller.RequestUpload(r.Context(), nil)
	if err != nil {
		u.logger.Error("upload failed", err)
		Error(w, statusFor(err), err)
		return
	}

	JSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		VideoID string `json:"videoId"`
	}{
		Message: "video uploaded successfully",
		VideoID: videoID,
	})
}

// formAsset adapts a multipart file to a re-openable asset source: every
// Open seeks back to the start, so the upload stream itself stays single-use.
type formAsset struct {
	file multipart.File
	mime string
	size int64
}

func (a *formAsset) Open() (io.ReadCloser, error) {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return io.NopCloser(a.file), nil
}

func (a *formAsset) MIME() string {
	return a.mime
}

func (a *formAsset) Size() int64 {
	return a.size
}
