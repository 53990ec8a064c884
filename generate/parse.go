package generate

import (
	"encoding/json"
	"strings"

	"github.com/mvdbrink/pubtube/model"
)

// ParseMetadata parses raw model output as a metadata object. The model is
// an untrusted text oracle: the instruction forbids markdown fencing but
// compliance is not guaranteed, so a leading/trailing code fence is stripped
// before parsing. Anything that is not a JSON object with a non-empty title
// fails with a generation error.
func ParseMetadata(raw string) (model.Metadata, error) {
	raw = stripFence(raw)
	if raw == "" {
		return model.Metadata{}, model.NewError(model.KindGeneration, "model returned no text")
	}

	var md model.Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return model.Metadata{}, model.WrapError(model.KindGeneration, "model output is not valid JSON", err)
	}
	if strings.TrimSpace(md.Title) == "" {
		return model.Metadata{}, model.NewError(model.KindGeneration, "model output is missing a title")
	}
	if md.Tags == nil {
		md.Tags = []string{}
	}

	return md, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
