package model

import "io"

// Metadata is the generated title/description/tags/category bundle that
// describes a video. Category holds the human readable label as the model
// produced it, CategoryID the YouTube category code once resolved.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

func (m Metadata) Resolved() bool {
	return m.CategoryID != ""
}

type Category struct {
	ID    string
	Title string
}

// VideoAsset is a single-use byte stream over a video file. Data is consumed
// exactly once and cannot be rewound; a retry needs a fresh stream from the
// original source.
type VideoAsset struct {
	MIME string
	Size int64
	Data io.Reader
}

// AllowedMIME reports whether mime is a video type we accept for upload.
func AllowedMIME(mime string) bool {
	switch mime {
	case "video/mp4", "video/quicktime":
		return true
	}
	return false
}
