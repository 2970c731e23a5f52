package newsletter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/substack-client/pkg/client"
	"github.com/Sternrassler/substack-client/pkg/pagination"
)

// ArchivePageSize is the number of posts the archive endpoint returns per call.
const ArchivePageSize = 10

// Post is a post as returned by the platform. Fields are left open; numbers
// are json.Number.
type Post map[string]any

// ID returns the post identifier in string form.
func (p Post) ID() (string, error) {
	switch id := p["id"].(type) {
	case json.Number:
		return id.String(), nil
	case string:
		return id, nil
	default:
		return "", client.Shape("post", "id")
	}
}

// Slug returns the post slug.
func (p Post) Slug() (string, error) {
	slug, ok := p["slug"].(string)
	if !ok {
		return "", client.Shape("post", "slug")
	}
	return slug, nil
}

// BodyHTML returns the post body.
func (p Post) BodyHTML() (string, error) {
	body, ok := p["body_html"].(string)
	if !ok {
		return "", client.Shape("post", "body_html")
	}
	return body, nil
}

// PostMetadata lists a newsletter's posts newest first. offsets bounds the
// archive offset, which advances by ArchivePageSize per call; a zero
// offsets.End means the whole archive, so an empty window cannot be
// requested. Collection stops at an empty page or when a page ends on the
// same post as the page before it.
func (s *Service) PostMetadata(ctx context.Context, subdomain string, offsets Range) ([]Post, error) {
	return pagination.Collect(ctx, "archive_posts", offsets.cursor(ArchivePageSize), s.archivePages(subdomain), pagination.Identity[Post], archiveRules()...)
}

// PostSlugs is PostMetadata reduced to slugs.
func (s *Service) PostSlugs(ctx context.Context, subdomain string, offsets Range) ([]string, error) {
	return pagination.Collect(ctx, "archive_slugs", offsets.cursor(ArchivePageSize), s.archivePages(subdomain), Post.Slug, archiveRules()...)
}

func archiveRules() []pagination.StopRule[Post] {
	return []pagination.StopRule[Post]{
		pagination.StopOnEmpty[Post](),
		pagination.StopOnRepeatedLastID(Post.ID),
	}
}

func (s *Service) archivePages(subdomain string) pagination.PageFunc[Post] {
	return func(ctx context.Context, offset int) (pagination.Page[Post], error) {
		u := s.endpoints.Newsletter(subdomain, fmt.Sprintf("/api/v1/archive?sort=new&search=&offset=%d&limit=%d", offset, ArchivePageSize))

		var posts []Post
		if _, err := s.fetcher.GetJSON(ctx, u, &posts); err != nil {
			return pagination.Page[Post]{}, err
		}
		return pagination.Page[Post]{Items: posts}, nil
	}
}

// PostContents fetches a single post with all of its metadata.
func (s *Service) PostContents(ctx context.Context, subdomain, slug string) (Post, error) {
	u := s.endpoints.Newsletter(subdomain, "/api/v1/posts/"+client.Segment(slug))

	var post Post
	if _, err := s.fetcher.GetJSON(ctx, u, &post); err != nil {
		return nil, fmt.Errorf("get post %s/%s: %w", subdomain, slug, err)
	}
	if post == nil {
		return nil, client.Shape(u, "post")
	}
	return post, nil
}

// PostHTML fetches only the body HTML of a post.
func (s *Service) PostHTML(ctx context.Context, subdomain, slug string) (string, error) {
	post, err := s.PostContents(ctx, subdomain, slug)
	if err != nil {
		return "", err
	}
	return post.BodyHTML()
}
