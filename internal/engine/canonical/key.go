package canonical

import (
	"sort"
	"strings"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
)

// Pair is one (field, value) component of a grouping key.
type Pair struct {
	Field string
	Value string
}

// Key returns the grouping key of an event as an ordered list of primitive
// (field, value) pairs. Set-valued fields contribute one pair per distinct
// normalised member, sorted, so the key does not depend on mention order.
func Key(e *v1.Event) []Pair {
	pairs := []Pair{
		{Field: "subject", Value: normalize(e.Subject)},
		{Field: "action", Value: normalize(e.ActionLemmaOrAction())},
		{Field: "object", Value: normalizeObject(e.Object)},
	}
	pairs = append(pairs, setPairs("location", e.Location, normalizeObject)...)
	pairs = append(pairs, setPairs("time", e.Time, normalize)...)
	return pairs
}

// KeyString renders a key as a single comparable string, usable as a map key.
func KeyString(pairs []Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(p.Field)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

func setPairs(field string, values []string, norm func(string) string) []Pair {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		n := norm(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)

	pairs := make([]Pair, 0, len(out))
	for _, v := range out {
		pairs = append(pairs, Pair{Field: field, Value: v})
	}
	return pairs
}
