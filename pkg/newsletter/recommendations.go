package newsletter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Sternrassler/substack-client/pkg/client"
)

// Recommendation is a newsletter recommended by another newsletter.
type Recommendation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Recommendations scrapes a newsletter's recommendations page. Titles and
// links are paired by position in the page: the n-th ".publication-title"
// with the first anchor of the n-th ".publication-content". When the two
// lists differ in length the extra entries are dropped.
func (s *Service) Recommendations(ctx context.Context, subdomain string) ([]Recommendation, error) {
	u := s.endpoints.Newsletter(subdomain, "/recommendations")

	resp, err := s.fetcher.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("get recommendations for %s: %w", subdomain, err)
	}

	recs, err := s.parseRecommendations(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse recommendations for %s: %w", subdomain, err)
	}
	return recs, nil
}

func (s *Service) parseRecommendations(page []byte) ([]Recommendation, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrUnexpectedShape, err)
	}

	var links []string
	var linkErr error
	doc.Find(".publication-content").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, ok := sel.Find("a").First().Attr("href")
		if !ok {
			linkErr = client.Shape(fmt.Sprintf("publication-content #%d", i), "a[href]")
			return false
		}
		link, _, _ := strings.Cut(href, "?")
		links = append(links, link)
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}

	titles := doc.Find(".publication-title").Map(func(_ int, sel *goquery.Selection) string {
		return strings.TrimSpace(sel.Text())
	})

	n := min(len(titles), len(links))
	if len(titles) != len(links) {
		s.logger.Warn().
			Int("titles", len(titles)).
			Int("links", len(links)).
			Msg("Recommendation titles and links differ in count; pairing by position")
	}

	recs := make([]Recommendation, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, Recommendation{Title: titles[i], URL: links[i]})
	}
	return recs, nil
}
