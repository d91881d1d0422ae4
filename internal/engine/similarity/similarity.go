// Package similarity decides whether two events denote the same occurrence.
//
// Two policies are exposed. Score is the single-signal continuous score used
// when merging events of one narrative. Same is the permissive OR of three
// signals used when linking against the persisted history: embedding cosine,
// character-level sequence ratio and token Jaccard overlap, evaluated in that
// order and short-circuited on the first that passes.
package similarity

import (
	"fmt"
	"math"
	"strings"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/engine/canonical"
	"github.com/pmezard/go-difflib/difflib"
)

// Default thresholds.
const (
	DefaultMergeThreshold   = 0.60
	DefaultCosineThreshold  = 0.80
	DefaultRatioThreshold   = 0.65
	DefaultJaccardThreshold = 0.50
)

// Signal names the condition that decided a Same comparison.
type Signal string

const (
	SignalNone      Signal = ""
	SignalEmbedding Signal = "embedding"
	SignalRatio     Signal = "ratio"
	SignalJaccard   Signal = "jaccard"
)

// Thresholds configures the Scorer. Zero values are replaced by defaults.
type Thresholds struct {
	Cosine  float64
	Ratio   float64
	Jaccard float64
}

func (t Thresholds) normalized() Thresholds {
	n := t
	if n.Cosine <= 0 {
		n.Cosine = DefaultCosineThreshold
	}
	if n.Ratio <= 0 {
		n.Ratio = DefaultRatioThreshold
	}
	if n.Jaccard <= 0 {
		n.Jaccard = DefaultJaccardThreshold
	}
	return n
}

// Validate rejects thresholds outside [0, 1].
func (t Thresholds) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"cosine", t.Cosine},
		{"ratio", t.Ratio},
		{"jaccard", t.Jaccard},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 1 {
			return fmt.Errorf("%s threshold must be within [0, 1], got %v", c.name, c.value)
		}
	}
	return nil
}

// Scorer computes same-event likelihoods.
type Scorer struct {
	th Thresholds
}

// NewScorer creates a Scorer with the given thresholds.
func NewScorer(th Thresholds) *Scorer {
	return &Scorer{th: th.normalized()}
}

// Thresholds returns the effective thresholds.
func (s *Scorer) Thresholds() Thresholds {
	return s.th
}

// Score returns the character-level sequence ratio between the primary
// canonical strings of a and b, in [0, 1].
func (s *Scorer) Score(a, b *v1.Event) float64 {
	return Ratio(canonical.Primary(a), canonical.Primary(b))
}

// Same reports whether two canonical strings denote the same event and which
// signal decided it. Embeddings are only consulted when both are present.
func (s *Scorer) Same(a, b string, embA, embB []float32) (bool, Signal) {
	if len(embA) > 0 && len(embB) > 0 && Cosine(embA, embB) >= s.th.Cosine {
		return true, SignalEmbedding
	}
	if Ratio(a, b) >= s.th.Ratio {
		return true, SignalRatio
	}
	if Jaccard(a, b) >= s.th.Jaccard {
		return true, SignalJaccard
	}
	return false, SignalNone
}

// Ratio is the character-level sequence-matching ratio 2*M/T, where M is the
// number of matched characters and T the total length of both strings.
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// Jaccard is the token-overlap ratio of the whitespace-split tokens of a and b.
// It is 0 when both sides are empty.
func Jaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Cosine returns the cosine similarity of two vectors, or 0 when they differ
// in length or either has zero norm.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenSet(s string) map[string]struct{} {
	fields := canonical.Tokens(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
