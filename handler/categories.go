package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mvdbrink/pubtube/model"
	"golang.org/x/exp/slog"
)

type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

type CategoryAPI struct {
	lister CategoryLister
	logger *slog.Logger
}

func NewCategoryAPI(lister CategoryLister, logger *slog.Logger) *CategoryAPI {
	return &CategoryAPI{
		lister: lister,
		logger: logger,
	}
}

func (c *CategoryAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)
	if r.Method != http.MethodGet || head != "" {
		Error(w, http.StatusNotFound, fmt.Errorf("method %s with subpath %q was not registered in the categories api", r.Method, head))
		return
	}

	categories, err := c.lister.List(r.Context())
	if err != nil {
		c.logger.Error("failed to list categories", err)
		Error(w, statusFor(err), err)
		return
	}

	type respSnippet struct {
		Title string `json:"title"`
	}
	type respCategory struct {
		ID      string      `json:"id"`
		Snippet respSnippet `json:"snippet"`
	}
	resp := make([]respCategory, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, respCategory{
			ID:      category.ID,
			Snippet: respSnippet{Title: category.Title},
		})
	}

	JSON(w, http.StatusOK, resp)
}
