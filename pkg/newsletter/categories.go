package newsletter

import (
	"context"
	"encoding/json"
	"fmt"
)

// Category is a content category.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Rank   int    `json:"rank"`
	Slug   string `json:"slug"`
}

// Categories lists all categories. Entries whose id is not an integer are
// dropped; only id, name, active, rank and slug are kept.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var raw []map[string]any
	if _, err := s.fetcher.GetJSON(ctx, s.endpoints.API("/api/v1/categories"), &raw); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]Category, 0, len(raw))
	for _, entry := range raw {
		id, ok := integer(entry["id"])
		if !ok {
			s.logger.Debug().Interface("id", entry["id"]).Msg("Dropping category with non-integer id")
			continue
		}

		category := Category{ID: id}
		category.Name, _ = entry["name"].(string)
		category.Active, _ = entry["active"].(bool)
		category.Slug, _ = entry["slug"].(string)
		if rank, ok := integer(entry["rank"]); ok {
			category.Rank = int(rank)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// CategoryIDToName maps a category id to its name.
func (s *Service) CategoryIDToName(ctx context.Context, id int64) (string, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if c.ID == id {
			return c.Name, nil
		}
	}
	return "", &NotFoundError{Key: id}
}

// CategoryNameToID maps a category name to its id.
func (s *Service) CategoryNameToID(ctx context.Context, name string) (int64, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range categories {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return 0, &NotFoundError{Key: name}
}

// integer reports whether v is a JSON integer.
func integer(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}
