package core

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxMatchDistance is the largest normalised Levenshtein distance
// (edits / length of the longer string) still accepted as a match.
// Handwritten khata pages produce noisy OCR, so the threshold is generous.
const maxMatchDistance = 0.25

// ResolveMatches links each detected item to an existing catalog product, in
// catalog order. A case-insensitive substring containment wins outright;
// otherwise the closest product within maxMatchDistance is used. Items with
// no acceptable candidate are left unmatched and will become new products at
// reconciliation.
//
// The input slice is not modified; a resolved copy is returned.
func ResolveMatches(catalog []Product, items []DetectedItem) []DetectedItem {
	resolved := make([]DetectedItem, len(items))
	copy(resolved, items)

	for i := range resolved {
		if id, ok := matchProduct(catalog, resolved[i].Name); ok {
			resolved[i].IsExisting = true
			resolved[i].ExistingProductID = id
		} else {
			resolved[i].IsExisting = false
			resolved[i].ExistingProductID = ""
		}
	}
	return resolved
}

func matchProduct(catalog []Product, name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}

	// Containment either way: "Milk" matches "Fresh Milk 1L" and vice versa.
	for _, p := range catalog {
		hay := strings.ToLower(p.Name)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return p.ID, true
		}
	}

	bestID := ""
	bestDist := maxMatchDistance
	for _, p := range catalog {
		hay := strings.ToLower(p.Name)
		longer := len(hay)
		if len(needle) > longer {
			longer = len(needle)
		}
		if longer == 0 {
			continue
		}
		d := float64(levenshtein.ComputeDistance(needle, hay)) / float64(longer)
		if d < bestDist {
			bestDist = d
			bestID = p.ID
		}
	}
	return bestID, bestID != ""
}
