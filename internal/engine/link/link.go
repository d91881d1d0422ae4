// Package link links the de-duplicated events of a new narrative into the
// persisted event collection of a journal.
//
// Linking only tracks recurrence: a new event matching a collected one bumps
// its occurrence count and nothing else. Field-level fusion happens only
// within a narrative (see package merge).
package link

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/embedding"
	"github.com/aevon-lab/recall/internal/engine/canonical"
	"github.com/aevon-lab/recall/internal/engine/similarity"
	"github.com/aevon-lab/recall/internal/metrics"
)

// Linker matches new events against an event collection.
type Linker struct {
	scorer   *similarity.Scorer
	embedder embedding.Embedder
	metrics  *metrics.Metrics
	nowFn    func() time.Time
}

// Option customises a Linker.
type Option func(*Linker)

// WithEmbedder enables the embedding signal. A nil embedder leaves the linker
// on the two textual signals.
func WithEmbedder(e embedding.Embedder) Option {
	return func(l *Linker) { l.embedder = e }
}

// WithMetrics records link outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Linker) { l.metrics = m }
}

// WithClock overrides the clock used for first_mentioned.
func WithClock(now func() time.Time) Option {
	return func(l *Linker) { l.nowFn = now }
}

// New creates a Linker.
func New(scorer *similarity.Scorer, opts ...Option) *Linker {
	if scorer == nil {
		panic("link: scorer must not be nil")
	}
	l := &Linker{
		scorer: scorer,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of one Link call.
type Result struct {
	Collection string
	Size       int
	Matched    int
	Appended   int
}

// Link links events into the serialized prior collection and returns the
// updated serialized collection. Absent or malformed prior text is treated as
// an empty collection. Linking no events returns the prior collection
// unchanged apart from self-healing.
func (l *Linker) Link(ctx context.Context, prior string, events []v1.Event) (Result, error) {
	now := v1.NewTimestamp(l.nowFn())
	collection := l.Decode(prior)

	var res Result
	embeddings := newEmbeddingCache(l.embedder, l.metrics)
	for i := range events {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		evt := &events[i]
		text := canonical.Extended(evt)
		emb := embeddings.get(ctx, text)

		match := -1
		var signal similarity.Signal
		for j := range collection {
			other := canonical.Extended(&collection[j])
			var otherEmb []float32
			if emb != nil {
				otherEmb = embeddings.get(ctx, other)
			}
			same, sig := l.scorer.Same(text, other, emb, otherEmb)
			if same {
				match, signal = j, sig
				break
			}
		}

		if match >= 0 {
			matched := &collection[match]
			matched.Occurrences++
			if matched.FirstMentioned.IsZero() {
				matched.FirstMentioned = now
			}
			res.Matched++
			l.metrics.LinkMatched(string(signal))
			slog.Debug("[Linker] Event linked",
				"event_id", evt.EventID,
				"matched_event_id", matched.EventID,
				"signal", signal,
				"occurrences", matched.Occurrences)
			continue
		}

		added := evt.Clone()
		added.Occurrences = 1
		added.FirstMentioned = now
		collection = append(collection, added)
		res.Appended++
		l.metrics.LinkAppended()
	}

	out, err := Encode(collection)
	if err != nil {
		return Result{}, err
	}
	res.Collection = out
	res.Size = len(collection)
	return res, nil
}

// Decode parses a serialized collection and self-heals it: every event gets
// at least one occurrence and a first_mentioned timestamp. Blank, null or
// non-array text yields an empty collection. Elements that cannot be decoded
// or healed are dropped one by one; the rest of the collection survives.
func (l *Linker) Decode(prior string) []v1.Event {
	collection := []v1.Event{}
	trimmed := strings.TrimSpace(prior)
	if trimmed == "" || trimmed == "null" {
		return collection
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elements); err != nil {
		slog.Warn("[Linker] Malformed event collection, starting empty", "error", err, "size", len(prior))
		l.metrics.CollectionRecovered()
		return collection
	}

	now := v1.NewTimestamp(l.nowFn())
	for i, raw := range elements {
		var evt v1.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			l.dropElement(i, err)
			continue
		}
		heal(&evt, now)
		if err := evt.Validate(); err != nil {
			l.dropElement(i, err)
			continue
		}
		collection = append(collection, evt)
	}
	return collection
}

func (l *Linker) dropElement(index int, err error) {
	slog.Warn("[Linker] Dropping malformed collection event", "index", index, "error", err)
	l.metrics.CollectionRecovered()
}

// heal repairs what older producers left inconsistent.
func heal(evt *v1.Event, now v1.Timestamp) {
	if evt.Occurrences < 1 {
		evt.Occurrences = 1
	}
	if evt.FirstMentioned.IsZero() {
		evt.FirstMentioned = now
	}
	if n := min(len(evt.RawSentences), len(evt.SentenceIndices)); n != len(evt.RawSentences) || n != len(evt.SentenceIndices) {
		evt.RawSentences = evt.RawSentences[:n]
		evt.SentenceIndices = evt.SentenceIndices[:n]
	}
}

// Encode serializes a collection as a JSON array.
func Encode(collection []v1.Event) (string, error) {
	if collection == nil {
		collection = []v1.Event{}
	}
	data, err := json.Marshal(collection)
	if err != nil {
		return "", fmt.Errorf("failed to encode event collection: %w", err)
	}
	return string(data), nil
}

// embeddingCache memoises embeddings of canonical strings for one Link call.
// Failures are remembered as absent so a failing source is asked once per text.
type embeddingCache struct {
	embedder embedding.Embedder
	metrics  *metrics.Metrics
	vectors  map[string][]float32
}

func newEmbeddingCache(e embedding.Embedder, m *metrics.Metrics) *embeddingCache {
	return &embeddingCache{embedder: e, metrics: m, vectors: make(map[string][]float32)}
}

func (c *embeddingCache) get(ctx context.Context, text string) []float32 {
	if c.embedder == nil || text == "" {
		return nil
	}
	if v, ok := c.vectors[text]; ok {
		return v
	}

	v, err := c.embedder.Embed(ctx, text)
	if err != nil {
		slog.Warn("[Linker] Embedding failed, using text signals", "error", err)
		c.metrics.EmbeddingFailed()
		v = nil
	}
	c.vectors[text] = v
	return v
}
