package generate

import (
	"context"

	"github.com/mvdbrink/pubtube/model"
)

// Generator turns a free-text video description into YouTube metadata.
type Generator interface {
	Generate(ctx context.Context, prompt string) (model.Metadata, error)
}
