package mock

import (
	"context"

	"github.com/fwojciec/unfold"
)

var _ unfold.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of unfold.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, siteURL string, filter *unfold.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string, filter *unfold.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, siteURL, filter)
}
