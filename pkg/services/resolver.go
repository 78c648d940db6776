package services

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/askdata-inc/askdata-engine/pkg/models"
)

// fuzzyMinLength guards fuzzy containment matching: whichever side is
// shorter must be at least this long, so stopwords like "in" or "at" can
// never match substrings of unrelated field names.
const fuzzyMinLength = 4

// synonymGroups map natural-language vocabulary onto columns. Within a
// group, the first member that matches an actual field becomes the target
// for every member.
var synonymGroups = [][]string{
	{"boxoffice", "box office", "revenue", "gross", "earnings", "sales"},
	{"rating", "score", "stars"},
	{"votes", "vote count"},
	{"runtime", "duration", "length"},
	{"genre", "category"},
	{"year", "release year"},
	{"price", "cost", "amount"},
}

// buildAliases derives the alias table for a schema: the field name itself,
// its whitespace-collapsed and space-separated variants, its singular form,
// and synonym-group members. Earlier fields win collisions, keeping the
// table deterministic.
func buildAliases(s *models.DatasetSchema) map[string]string {
	aliases := make(map[string]string)
	put := func(key, field string) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if _, exists := aliases[key]; !exists {
			aliases[key] = field
		}
	}

	for _, field := range s.AllFields {
		lf := strings.ToLower(field)
		put(lf, field)
		put(collapseToken(lf), field)
		put(strings.ReplaceAll(lf, "_", " "), field)
		put(inflection.Singular(lf), field)
	}

	for _, group := range synonymGroups {
		var target string
		for _, member := range group {
			if f, ok := aliases[collapseToken(member)]; ok {
				target = f
				break
			}
		}
		if target == "" {
			continue
		}
		for _, member := range group {
			put(member, target)
			put(collapseToken(member), target)
		}
	}

	return aliases
}

// ResolveField maps a user-typed token or phrase to an actual column name.
// Resolution order: exact alias, collapsed alias, singular alias, then fuzzy
// containment gated by fuzzyMinLength. Pure and side-effect-free; called
// many times per request.
func ResolveField(token string, s *models.DatasetSchema) (string, bool) {
	tok := strings.ToLower(strings.TrimSpace(token))
	tok = strings.Trim(tok, "?.!,")
	if tok == "" {
		return "", false
	}

	if f, ok := s.Aliases[tok]; ok {
		return f, true
	}
	if f, ok := s.Aliases[collapseToken(tok)]; ok {
		return f, true
	}
	if f, ok := s.Aliases[inflection.Singular(tok)]; ok {
		return f, true
	}

	collapsed := collapseToken(tok)
	for _, field := range s.AllFields {
		name := collapseToken(field)
		shorter := len(collapsed)
		if len(name) < shorter {
			shorter = len(name)
		}
		if shorter < fuzzyMinLength {
			continue
		}
		if strings.Contains(name, collapsed) || strings.Contains(collapsed, name) {
			return field, true
		}
	}
	return "", false
}

// collapseToken lower-cases a token and strips whitespace and underscores,
// so "Box Office", "box_office", and "boxoffice" normalize identically.
func collapseToken(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
