// Package canonical projects an event's semantic fields onto normalised strings
// that serve as the basis for similarity comparison and grouping.
package canonical

import (
	"regexp"
	"strings"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
)

var (
	// trailingQualifier matches a trailing qualifier word on object-like fields
	// ("the park again" -> "the park").
	trailingQualifier = regexp.MustCompile(`\s+(again|too|also|anyway|anymore|instead|though|later|today)$`)

	// leadingArticle matches a leading article on object-like fields.
	leadingArticle = regexp.MustCompile(`^(the|a|an)\s+`)

	spaces = regexp.MustCompile(`\s+`)
)

// Primary returns the subject/action/object projection used for
// intra-document merging. Absent fields are skipped.
func Primary(e *v1.Event) string {
	return join(
		normalize(e.Subject),
		normalize(e.Action),
		normalizeObject(e.Object),
	)
}

// Extended returns the Primary projection followed by the event's locations,
// used for cross-document linking.
func Extended(e *v1.Event) string {
	parts := []string{
		normalize(e.Subject),
		normalize(e.Action),
		normalizeObject(e.Object),
	}
	for _, loc := range e.Location {
		parts = append(parts, normalizeObject(loc))
	}
	return join(parts...)
}

// Tokens splits a canonical string on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}

func normalize(s string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func normalizeObject(s string) string {
	s = normalize(s)
	s = trailingQualifier.ReplaceAllString(s, "")
	s = leadingArticle.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
