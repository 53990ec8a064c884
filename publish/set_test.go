package publish

import (
	"io"
	"testing"

	"github.com/mvdbrink/pubtube/storage"
	"golang.org/x/exp/slog"
)

func TestSetReturnsSameControllerPerSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard))
	set := NewSet(&fakeGenerator{}, &fakeLister{}, &fakeUploader{},
		storage.NewMemoryTokenStore(), storage.NewMemoryAttemptRepository(), logger)

	a := set.Get("session-a")
	if a == nil {
		t.Fatal("Get() = nil")
	}
	if set.Get("session-a") != a {
		t.Error("same session got a different controller")
	}
	if set.Get("session-b") == a {
		t.Error("different sessions share a controller")
	}
}
