// Package merge de-duplicates the events extracted from a single narrative.
package merge

import (
	"strings"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/engine/similarity"
)

// Merger folds raw events of one narrative into de-duplicated events.
type Merger struct {
	scorer    *similarity.Scorer
	threshold float64
	nowFn     func() time.Time
}

// Option customises a Merger.
type Option func(*Merger)

// WithClock overrides the clock used for last_mentioned.
func WithClock(now func() time.Time) Option {
	return func(m *Merger) { m.nowFn = now }
}

// New creates a Merger. A non-positive threshold selects
// similarity.DefaultMergeThreshold.
func New(scorer *similarity.Scorer, threshold float64, opts ...Option) *Merger {
	if scorer == nil {
		panic("merge: scorer must not be nil")
	}
	if threshold <= 0 {
		threshold = similarity.DefaultMergeThreshold
	}
	m := &Merger{
		scorer:    scorer,
		threshold: threshold,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the effective merge threshold.
func (m *Merger) Threshold() float64 {
	return m.threshold
}

// Merge processes raw events in extraction order. Each raw event is folded
// into the first accumulated event scoring at or above the threshold, or
// starts a new accumulated event. The input slice is not modified.
//
// Folding can backfill an empty subject or object and so change an
// accumulated event's canonical form; accumulated events are therefore
// compacted until no two of them score at or above the threshold.
func (m *Merger) Merge(raw []v1.Event) []v1.Event {
	acc := make([]v1.Event, 0, len(raw))
	for i := range raw {
		evt := &raw[i]
		matched := false
		for j := range acc {
			if m.scorer.Score(&acc[j], evt) >= m.threshold {
				m.fold(&acc[j], evt)
				matched = true
				break
			}
		}
		if !matched {
			acc = append(acc, seed(evt))
		}
	}
	return m.compact(acc)
}

// seed turns a raw event into a new accumulated event.
func seed(evt *v1.Event) v1.Event {
	out := evt.Clone()
	out.Occurrences = 1
	out.FirstMentioned = evt.ExtractedAt
	out.LastMentioned = evt.ExtractedAt
	out.RawSentences = []string{evt.Sentence}
	out.SentenceIndices = []int{evt.SentenceIndex}
	dedupeFields(&out)
	return out
}

// fold absorbs one raw mention into dst.
func (m *Merger) fold(dst, evt *v1.Event) {
	dst.Occurrences++
	dst.LastMentioned = v1.NewTimestamp(m.nowFn())
	addSentence(dst, evt.Sentence, evt.SentenceIndex)
	unionFields(dst, evt)
}

// combine absorbs an accumulated event into dst.
func combine(dst, src *v1.Event) {
	dst.Occurrences += src.Occurrences
	if !src.FirstMentioned.IsZero() && (dst.FirstMentioned.IsZero() || src.FirstMentioned.Before(dst.FirstMentioned.Time)) {
		dst.FirstMentioned = src.FirstMentioned
	}
	if src.LastMentioned.After(dst.LastMentioned.Time) {
		dst.LastMentioned = src.LastMentioned
	}
	for i, s := range src.RawSentences {
		addSentence(dst, s, src.SentenceIndices[i])
	}
	unionFields(dst, src)
}

func (m *Merger) compact(acc []v1.Event) []v1.Event {
	for {
		i, j, found := m.firstMergeablePair(acc)
		if !found {
			return acc
		}
		combine(&acc[i], &acc[j])
		acc = append(acc[:j], acc[j+1:]...)
	}
}

// firstMergeablePair returns the first pair i < j, in scan order, that should merge.
func (m *Merger) firstMergeablePair(acc []v1.Event) (int, int, bool) {
	for i := range acc {
		for j := i + 1; j < len(acc); j++ {
			if m.scorer.Score(&acc[i], &acc[j]) >= m.threshold {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func addSentence(dst *v1.Event, sentence string, index int) {
	for _, s := range dst.RawSentences {
		if s == sentence {
			return
		}
	}
	dst.RawSentences = append(dst.RawSentences, sentence)
	dst.SentenceIndices = append(dst.SentenceIndices, index)
}

func unionFields(dst, src *v1.Event) {
	dst.Subjects = union(dst.Subjects, src.Subjects)
	dst.Objects = union(dst.Objects, src.Objects)
	dst.Time = union(dst.Time, src.Time)
	dst.Location = union(dst.Location, src.Location)
	dst.AdditionalInfo = union(dst.AdditionalInfo, src.AdditionalInfo)
	dst.Entities = unionEntities(dst.Entities, src.Entities)

	if strings.TrimSpace(dst.Subject) == "" && strings.TrimSpace(src.Subject) != "" {
		dst.Subject = src.Subject
	}
	if strings.TrimSpace(dst.Object) == "" && strings.TrimSpace(src.Object) != "" {
		dst.Object = src.Object
	}
}

func dedupeFields(e *v1.Event) {
	e.Subjects = union(nil, e.Subjects)
	e.Objects = union(nil, e.Objects)
	e.Time = union(nil, e.Time)
	e.Location = union(nil, e.Location)
	e.AdditionalInfo = union(nil, e.AdditionalInfo)
	e.Entities = unionEntities(nil, e.Entities)
}

// union appends the members of add missing from base, preserving order.
// The result is never nil.
func union(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]struct{}, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// unionEntities merges entities by case-insensitive text and label, keeping
// the casing seen first.
func unionEntities(base, add []v1.Entity) []v1.Entity {
	out := make([]v1.Entity, 0, len(base)+len(add))
	seen := make(map[string]struct{}, len(base)+len(add))
	for _, list := range [][]v1.Entity{base, add} {
		for _, e := range list {
			if _, ok := seen[e.Key()]; ok {
				continue
			}
			seen[e.Key()] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
