package youtube

import (
	"context"
	"strings"
	"sync"

	"github.com/mvdbrink/pubtube/model"
	"google.golang.org/api/youtube/v3"
)

// CategoryLister fetches the assignable video categories for a region and
// caches them after the first successful fetch.
type CategoryLister struct {
	svc    *youtube.Service
	region string

	mu     sync.Mutex
	cached []model.Category
}

func NewCategoryLister(svc *youtube.Service, region string) *CategoryLister {
	return &CategoryLister{
		svc:    svc,
		region: region,
	}
}

func (c *CategoryLister) List(ctx context.Context) ([]model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return c.cached, nil
	}

	resp, err := c.svc.VideoCategories.
		List([]string{"snippet"}).
		RegionCode(c.region).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err, "fetch video categories")
	}

	categories := make([]model.Category, 0, len(resp.Items))
	for _, item := range resp.Items {
		// Non-assignable categories cannot be used on an insert call.
		if item.Snippet == nil || !item.Snippet.Assignable {
			continue
		}
		categories = append(categories, model.Category{
			ID:    item.Id,
			Title: item.Snippet.Title,
		})
	}
	c.cached = categories

	return c.cached, nil
}

// Invalidate drops the cached list so the next List fetches again.
func (c *CategoryLister) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

// Resolve maps a human readable category label to a category id. The match
// is case-insensitive and exact; the first match wins. It returns "" when no
// entry carries the label, which callers must treat as "selection required".
func Resolve(label string, list []model.Category) string {
	for _, category := range list {
		if strings.EqualFold(category.Title, label) {
			return category.ID
		}
	}

	return ""
}
