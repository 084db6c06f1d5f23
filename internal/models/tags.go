package models

import (
	"encoding/json"
	"fmt"
)

// Vocabularies offered by the signup form. Stored values must come from these.
var (
	Specializations = []string{"Anxiété", "Dépression", "Burnout", "Couple", "Enfants", "Trauma"}
	Languages       = []string{"Français", "Allemand", "Anglais", "Italien"}
)

// EncodeTags serialises an ordered tag list for a text column.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeTags parses a stored tag list. Empty or malformed input yields an
// empty list.
func DecodeTags(raw string) []string {
	var tags []string
	if raw == "" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// ValidateTags checks that tags is non-empty, free of duplicates and drawn
// from vocab.
func ValidateTags(field string, tags []string, vocab []string) error {
	if len(tags) == 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("At least one value is required for %s", field)}
	}
	known := make(map[string]bool, len(vocab))
	for _, v := range vocab {
		known[v] = true
	}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if !known[t] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("Unknown value %q for %s", t, field)}
		}
		if seen[t] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("Duplicate value %q for %s", t, field)}
		}
		seen[t] = true
	}
	return nil
}
