package client

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints holds the URL roots requests are built from.
type Endpoints struct {
	// Root is the platform-wide API host (categories, users, feeds)
	Root string

	// NewsletterFormat is a fmt pattern taking the newsletter subdomain
	NewsletterFormat string
}

// DefaultEndpoints returns the production URL roots.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Root:             "https://substack.com",
		NewsletterFormat: "https://%s.substack.com",
	}
}

// API joins path onto Root.
func (e Endpoints) API(path string) string {
	return strings.TrimRight(e.Root, "/") + path
}

// Newsletter joins path onto the root of the given newsletter.
func (e Endpoints) Newsletter(subdomain, path string) string {
	return strings.TrimRight(fmt.Sprintf(e.NewsletterFormat, url.PathEscape(subdomain)), "/") + path
}

// Segment escapes a caller-supplied value for use as one path segment.
func Segment(s string) string {
	return url.PathEscape(s)
}
