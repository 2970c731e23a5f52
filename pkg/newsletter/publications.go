package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/substack-client/pkg/client"
	"github.com/Sternrassler/substack-client/pkg/pagination"
)

// CategoryPageCeiling is the last category page the platform serves; page
// numbers run 0 through 20.
const CategoryPageCeiling = 20

// Publication is a newsletter as returned by the platform. Fields are left
// open; numbers are json.Number.
type Publication map[string]any

// ID returns the publication identifier in string form. This is what the
// category listing reduces each publication to.
func (p Publication) ID() (string, error) {
	switch id := p["id"].(type) {
	case json.Number:
		return id.String(), nil
	case string:
		return id, nil
	default:
		return "", client.Shape("publication", "id")
	}
}

// Subdomain returns the publication's subdomain, the host label used in
// newsletter URLs.
func (p Publication) Subdomain() (string, error) {
	sub, ok := p["subdomain"].(string)
	if !ok {
		return "", client.Shape("publication", "subdomain")
	}
	return sub, nil
}

type categoryPage struct {
	More         *bool           `json:"more"`
	Publications []Publication   `json:"publications"`
	Errors       json.RawMessage `json:"errors"`
}

// NewslettersInCategory lists the newsletters of a category, page by page,
// until the platform reports no more pages, answers with errors, or
// pages.End is reached. A zero pages.End means no caller bound, so an empty
// page window cannot be requested; the platform ceiling still applies.
func (s *Service) NewslettersInCategory(ctx context.Context, categoryID int64, pages Range) ([]Publication, error) {
	return pagination.Collect(ctx, "category_newsletters", pages.cursor(1), s.categoryPages(categoryID), pagination.Identity[Publication])
}

// NewsletterSubdomainsInCategory is NewslettersInCategory reduced to each
// publication's identifier (its "id" field, see Publication.ID). Use
// NewslettersInCategory with Publication.Subdomain for URL host labels.
func (s *Service) NewsletterSubdomainsInCategory(ctx context.Context, categoryID int64, pages Range) ([]string, error) {
	return pagination.Collect(ctx, "category_subdomains", pages.cursor(1), s.categoryPages(categoryID), Publication.ID)
}

func (s *Service) categoryPages(categoryID int64) pagination.PageFunc[Publication] {
	return func(ctx context.Context, page int) (pagination.Page[Publication], error) {
		u := s.endpoints.API(fmt.Sprintf("/api/v1/category/public/%d/all?page=%d", categoryID, page))

		var body categoryPage
		if _, err := s.fetcher.GetJSON(ctx, u, &body); err != nil {
			return pagination.Page[Publication]{}, err
		}

		if present(body.Errors) {
			if page == CategoryPageCeiling+1 {
				s.logger.Warn().
					Int64("category_id", categoryID).
					Int("page", page).
					Msgf("Page %d was reached; the platform only supports the first %d pages. Stopping.", page, CategoryPageCeiling)
			} else {
				s.logger.Debug().
					Int64("category_id", categoryID).
					Int("page", page).
					RawJSON("errors", body.Errors).
					Msg("Category page returned errors")
			}
			return pagination.Page[Publication]{Halt: true}, nil
		}

		if body.More == nil {
			return pagination.Page[Publication]{}, client.Shape(u, "more")
		}
		if body.Publications == nil {
			return pagination.Page[Publication]{}, client.Shape(u, "publications")
		}

		return pagination.Page[Publication]{
			Items: body.Publications,
			Last:  !*body.More,
		}, nil
	}
}

// present reports whether a raw JSON value is set and non-empty.
func present(raw json.RawMessage) bool {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return len(bytes.TrimSpace(raw)) > 0
	}
	switch compact.String() {
	case "", "null", "false", "0", `""`, "[]", "{}":
		return false
	default:
		return true
	}
}
