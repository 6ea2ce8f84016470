package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwhite7112/woodpantry-parser/internal/extract"
)

// Ingredient is the finalized (name, quantity) unit returned to callers.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// ParserService turns free text into a normalized, deduplicated ingredient
// list using the configured extraction backend. All state is request-local.
type ParserService struct {
	provider *extract.Provider
}

func New(provider *extract.Provider) *ParserService {
	return &ParserService{provider: provider}
}

// Parse acquires an extractor, extracts raw pairs, then normalizes each pair
// and merges duplicates. Entities with empty names are dropped.
func (s *ParserService) Parse(ctx context.Context, text string) ([]Ingredient, error) {
	ex, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire extractor: %w", err)
	}
	defer s.provider.Release(ex)

	entities, err := ex.Extract(ctx, normalizeText(text))
	if err != nil {
		return nil, fmt.Errorf("extract ingredients: %w", err)
	}

	pairs := make([]Ingredient, 0, len(entities))
	for _, ent := range entities {
		if strings.TrimSpace(ent.Name) == "" {
			continue
		}
		name, qty := NormalizePair(ent.Name, ent.Quantity)
		pairs = append(pairs, Ingredient{Name: name, Quantity: qty})
	}

	return mergeDuplicates(pairs), nil
}
