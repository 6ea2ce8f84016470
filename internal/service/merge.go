package service

import "strings"

// mergeDuplicates folds normalized pairs into one entry per ingredient,
// keyed by lowercased trimmed name. The first occurrence wins unless it has
// an empty quantity and a later occurrence carries one, in which case the
// later entry replaces it wholesale. Output preserves the order in which
// distinct names were first seen.
func mergeDuplicates(pairs []Ingredient) []Ingredient {
	seen := make(map[string]int, len(pairs))
	result := make([]Ingredient, 0, len(pairs))

	for _, p := range pairs {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(result)
			result = append(result, p)
			continue
		}
		if result[idx].Quantity == "" && p.Quantity != "" {
			result[idx] = p
		}
	}
	return result
}
