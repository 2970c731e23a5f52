// Package user looks up public user profiles: identity, reads, likes and notes.
package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/substack-client/pkg/client"
)

// Fetcher is the subset of *client.Client used by the service.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, v any) (*client.Response, error)
}

// Read is one entry of a user's "Reads" list.
type Read struct {
	PublicationID      int64  `json:"publication_id"`
	PublicationName    string `json:"publication_name"`
	SubscriptionStatus string `json:"subscription_status"`
}

type profile struct {
	ID            *json.Number   `json:"id"`
	Subscriptions []subscription `json:"subscriptions"`
}

type subscription struct {
	Publication *struct {
		ID   *json.Number `json:"id"`
		Name *string      `json:"name"`
	} `json:"publication"`
	MembershipState *string `json:"membership_state"`
}

type feed struct {
	Items *[]any `json:"items"`
}

// Service issues user lookups through a Fetcher.
type Service struct {
	fetcher   Fetcher
	endpoints client.Endpoints
}

// NewService creates a user service.
func NewService(fetcher Fetcher, endpoints client.Endpoints) *Service {
	return &Service{fetcher: fetcher, endpoints: endpoints}
}

func (s *Service) profile(ctx context.Context, handle string) (*profile, string, error) {
	u := s.endpoints.API("/api/v1/user/" + client.Segment(handle) + "/public_profile")

	var p profile
	if _, err := s.fetcher.GetJSON(ctx, u, &p); err != nil {
		return nil, u, fmt.Errorf("get profile %s: %w", handle, err)
	}
	return &p, u, nil
}

// ID resolves a handle to the numeric user id.
func (s *Service) ID(ctx context.Context, handle string) (int64, error) {
	p, u, err := s.profile(ctx, handle)
	if err != nil {
		return 0, err
	}
	if p.ID == nil {
		return 0, client.Shape(u, "id")
	}

	id, err := p.ID.Int64()
	if err != nil {
		return 0, client.Shape(u, "id")
	}
	return id, nil
}

// Reads lists the newsletters in a user's "Reads" section.
func (s *Service) Reads(ctx context.Context, handle string) ([]Read, error) {
	p, u, err := s.profile(ctx, handle)
	if err != nil {
		return nil, err
	}
	if p.Subscriptions == nil {
		return nil, client.Shape(u, "subscriptions")
	}

	reads := make([]Read, 0, len(p.Subscriptions))
	for i, sub := range p.Subscriptions {
		field := func(name string) error {
			return client.Shape(u, fmt.Sprintf("subscriptions[%d].%s", i, name))
		}

		if sub.Publication == nil {
			return nil, field("publication")
		}
		if sub.Publication.ID == nil {
			return nil, field("publication.id")
		}
		pubID, err := sub.Publication.ID.Int64()
		if err != nil {
			return nil, field("publication.id")
		}
		if sub.Publication.Name == nil {
			return nil, field("publication.name")
		}
		if sub.MembershipState == nil {
			return nil, field("membership_state")
		}

		reads = append(reads, Read{
			PublicationID:      pubID,
			PublicationName:    *sub.Publication.Name,
			SubscriptionStatus: *sub.MembershipState,
		})
	}
	return reads, nil
}

// Likes returns the raw items of a user's likes feed.
func (s *Service) Likes(ctx context.Context, userID int64) ([]any, error) {
	return s.feed(ctx, fmt.Sprintf("/api/v1/reader/feed/profile/%d?types%%5B%%5D=like", userID))
}

// Notes returns the raw items of a user's profile feed (notes and comments).
func (s *Service) Notes(ctx context.Context, userID int64) ([]any, error) {
	return s.feed(ctx, fmt.Sprintf("/api/v1/reader/feed/profile/%d", userID))
}

func (s *Service) feed(ctx context.Context, path string) ([]any, error) {
	u := s.endpoints.API(path)

	var f feed
	if _, err := s.fetcher.GetJSON(ctx, u, &f); err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if f.Items == nil {
		return nil, client.Shape(u, "items")
	}
	return *f.Items, nil
}
