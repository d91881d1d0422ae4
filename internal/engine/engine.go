// Package engine turns narrative text into de-duplicated events and links them
// into a journal's persisted event collection.
//
// The engine is synchronous and keeps no state between calls. Callers must
// ensure a single writer per collection: Link is a read-modify-write over the
// serialized collection they pass in.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/annotation"
	"github.com/aevon-lab/recall/internal/embedding"
	"github.com/aevon-lab/recall/internal/engine/extract"
	"github.com/aevon-lab/recall/internal/engine/link"
	"github.com/aevon-lab/recall/internal/engine/merge"
	"github.com/aevon-lab/recall/internal/engine/similarity"
	"github.com/aevon-lab/recall/internal/metrics"
	"github.com/aevon-lab/recall/internal/sentiment"
	"github.com/shopspring/decimal"
)

// ErrAnnotatorUnavailable is returned when the linguistic annotation source is
// missing or fails. Nothing can be extracted without it.
var ErrAnnotatorUnavailable = errors.New("linguistic annotation source unavailable")

const (
	DefaultChunkSize        = 500
	DefaultSummarySentences = 3
)

// Options tunes the engine. Zero values select defaults.
type Options struct {
	MergeThreshold float64
	Link           similarity.Thresholds

	// ChunkSize is the paragraph length, in characters, above which a
	// paragraph is reduced to its first SummarySentences sentences.
	ChunkSize        int
	SummarySentences int

	// Now and NewID replace the wall clock and the event id generator.
	Now   func() time.Time
	NewID func() string
}

// Analysis is the result of ExtractAndMerge.
type Analysis struct {
	Sentiment decimal.Decimal
	Events    []v1.Event
}

type Engine struct {
	annotator annotation.Annotator
	sentiment *sentiment.Scorer
	metrics   *metrics.Metrics

	extractor *extract.Extractor
	merger    *merge.Merger
	linker    *link.Linker

	chunkSize        int
	summarySentences int
}

// New wires an Engine. The annotator is required. A nil embedder runs the
// linker on its textual signals only; a nil sentiment scorer uses the default
// lexicon; a nil metrics records nothing.
func New(ann annotation.Annotator, emb embedding.Embedder, sent *sentiment.Scorer, m *metrics.Metrics, opts Options) (*Engine, error) {
	if ann == nil {
		return nil, ErrAnnotatorUnavailable
	}
	if err := opts.Link.Validate(); err != nil {
		return nil, fmt.Errorf("invalid link thresholds: %w", err)
	}
	if opts.MergeThreshold < 0 || opts.MergeThreshold > 1 {
		return nil, fmt.Errorf("merge threshold must be within [0, 1], got %v", opts.MergeThreshold)
	}
	if sent == nil {
		sent = sentiment.NewScorer(sentiment.DefaultLexicon())
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = DefaultSummarySentences
	}

	var (
		extractOpts []extract.Option
		mergeOpts   []merge.Option
		linkOpts    = []link.Option{link.WithMetrics(m)}
	)
	if opts.Now != nil {
		extractOpts = append(extractOpts, extract.WithClock(opts.Now))
		mergeOpts = append(mergeOpts, merge.WithClock(opts.Now))
		linkOpts = append(linkOpts, link.WithClock(opts.Now))
	}
	if opts.NewID != nil {
		extractOpts = append(extractOpts, extract.WithIDGenerator(opts.NewID))
	}
	if emb != nil {
		linkOpts = append(linkOpts, link.WithEmbedder(emb))
	}

	scorer := similarity.NewScorer(opts.Link)
	th := scorer.Thresholds()
	slog.Debug("[Engine] Link thresholds",
		"cosine", th.Cosine,
		"ratio", th.Ratio,
		"jaccard", th.Jaccard,
		"embeddings", emb != nil)

	return &Engine{
		annotator:        ann,
		sentiment:        sent,
		metrics:          m,
		extractor:        extract.New(extractOpts...),
		merger:           merge.New(scorer, opts.MergeThreshold, mergeOpts...),
		linker:           link.New(scorer, linkOpts...),
		chunkSize:        opts.ChunkSize,
		summarySentences: opts.SummarySentences,
	}, nil
}

// ExtractAndMerge scores the sentiment of text and returns the de-duplicated
// events it mentions. A narrative without events is not an error.
func (e *Engine) ExtractAndMerge(ctx context.Context, text string) (Analysis, error) {
	var (
		tokens  []string
		raw     []v1.Event
		skipped int
		index   int
	)

	for _, paragraph := range Paragraphs(text) {
		sentences, err := e.annotator.Annotate(ctx, paragraph)
		if err != nil {
			return Analysis{}, fmt.Errorf("%w: %w", ErrAnnotatorUnavailable, err)
		}
		for _, s := range sentences {
			for _, tok := range s.Tokens {
				tokens = append(tokens, tok.Text)
			}
		}

		if len(paragraph) > e.chunkSize && len(sentences) > e.summarySentences {
			slog.Debug("[Engine] Summarising long paragraph",
				"length", len(paragraph),
				"sentences", len(sentences),
				"kept", e.summarySentences)
			sentences = sentences[:e.summarySentences]
		}

		for _, s := range sentences {
			evt, ok := e.extractor.Extract(s, index)
			index++
			if !ok {
				skipped++
				continue
			}
			raw = append(raw, evt)
		}
	}

	merged := e.merger.Merge(raw)

	e.metrics.EventsExtracted(len(raw))
	e.metrics.SentencesSkipped(skipped)
	e.metrics.EventsMerged(len(raw) - len(merged))
	slog.Debug("[Engine] Narrative analysed",
		"sentences", index,
		"skipped", skipped,
		"raw_events", len(raw),
		"events", len(merged))

	return Analysis{
		Sentiment: e.sentiment.Score(tokens),
		Events:    merged,
	}, nil
}

// Link links events into the serialized prior collection.
func (e *Engine) Link(ctx context.Context, prior string, events []v1.Event) (link.Result, error) {
	return e.linker.Link(ctx, prior, events)
}

// Collection decodes a serialized collection the way Link reads it.
func (e *Engine) Collection(serialized string) []v1.Event {
	return e.linker.Decode(serialized)
}

// Paragraphs splits text on newlines into trimmed, non-empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}
