package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/annotation/annotationtest"
	"github.com/aevon-lab/recall/internal/engine/similarity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 2, 7, 15, 0, 0, time.UTC)

func testOptions() Options {
	n := 0
	return Options{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("evt-%d", n)
		},
	}
}

func newTestEngine(t *testing.T, fake *annotationtest.Fake, opts Options) *Engine {
	t.Helper()
	e, err := New(fake, nil, nil, nil, opts)
	require.NoError(t, err)
	return e
}

func TestNew_RequiresAnnotator(t *testing.T) {
	_, err := New(nil, nil, nil, nil, Options{})
	require.ErrorIs(t, err, ErrAnnotatorUnavailable)
}

func TestNew_RejectsInvalidThresholds(t *testing.T) {
	_, err := New(annotationtest.NewFake(), nil, nil, nil, Options{MergeThreshold: 1.2})
	require.Error(t, err)

	_, err = New(annotationtest.NewFake(), nil, nil, nil, Options{Link: similarity.Thresholds{Cosine: 2}})
	require.Error(t, err)
}

func TestExtractAndMerge_RepeatedMention(t *testing.T) {
	e := newTestEngine(t, annotationtest.NewFake(), testOptions())

	res, err := e.ExtractAndMerge(context.Background(), "I went to the park. I went to the park again.")
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	evt := res.Events[0]
	require.Equal(t, "evt-1", evt.EventID)
	require.Equal(t, "I", evt.Subject)
	require.Equal(t, "went", evt.Action)
	require.Equal(t, "go", evt.ActionLemma)
	require.Equal(t, 2, evt.Occurrences)
	require.Len(t, evt.RawSentences, 2)
	require.True(t, res.Sentiment.IsZero())
}

func TestExtractAndMerge_SentimentCoversWholeNarrative(t *testing.T) {
	e := newTestEngine(t, annotationtest.NewFake(), testOptions())

	res, err := e.ExtractAndMerge(context.Background(), "It was a great day.\nThe food was terrible and sad.")
	require.NoError(t, err)
	// 1 positive, 2 negative over 11 alphabetic tokens.
	require.True(t, decimal.RequireFromString("-0.0909").Equal(res.Sentiment), res.Sentiment.String())
}

func TestExtractAndMerge_SentenceIndicesRunAcrossParagraphs(t *testing.T) {
	fake := annotationtest.NewFake()
	e := newTestEngine(t, fake, testOptions())

	res, err := e.ExtractAndMerge(context.Background(), "I went to the park.\n\n  \nShe bought groceries. What a day.\nWe met Anna.")
	require.NoError(t, err)
	require.Equal(t, 3, fake.Calls, "one annotation call per paragraph")

	require.Len(t, res.Events, 3)
	require.Equal(t, 0, res.Events[0].SentenceIndex)
	require.Equal(t, 1, res.Events[1].SentenceIndex)
	require.Equal(t, 3, res.Events[2].SentenceIndex)
}

func TestExtractAndMerge_LongParagraphIsSummarised(t *testing.T) {
	opts := testOptions()
	opts.ChunkSize = 40
	opts.SummarySentences = 2
	e := newTestEngine(t, annotationtest.NewFake(), opts)

	res, err := e.ExtractAndMerge(context.Background(), "I went to the park. She bought groceries. We met Anna. Tom called Mia.\nTom called Mia.")
	require.NoError(t, err)

	var sentences []string
	for _, evt := range res.Events {
		sentences = append(sentences, evt.Sentence)
	}
	require.Equal(t, []string{"I went to the park.", "She bought groceries.", "Tom called Mia."}, sentences)
	require.Equal(t, 2, res.Events[2].SentenceIndex)
}

func TestExtractAndMerge_NoEvents(t *testing.T) {
	fake := annotationtest.NewFake()
	e := newTestEngine(t, fake, testOptions())

	res, err := e.ExtractAndMerge(context.Background(), "   \n\n")
	require.NoError(t, err)
	require.Empty(t, res.Events)
	require.Zero(t, fake.Calls)

	res, err = e.ExtractAndMerge(context.Background(), "What a day.")
	require.NoError(t, err)
	require.Empty(t, res.Events)
}

func TestExtractAndMerge_AnnotatorFailurePropagates(t *testing.T) {
	fake := annotationtest.NewFake()
	fake.Err = errors.New("model not loaded")
	e := newTestEngine(t, fake, testOptions())

	_, err := e.ExtractAndMerge(context.Background(), "I went to the park.")
	require.ErrorIs(t, err, ErrAnnotatorUnavailable)
	require.ErrorContains(t, err, "model not loaded")
}

func TestExtractAndMerge_Deterministic(t *testing.T) {
	text := "I went to the park with Anna. We walked to the park again.\nShe bought groceries in Paris."
	newFake := func() *annotationtest.Fake {
		f := annotationtest.NewFake()
		f.Entities["Paris"] = "GPE"
		f.Entities["Anna"] = "PERSON"
		return f
	}

	first, err := newTestEngine(t, newFake(), testOptions()).ExtractAndMerge(context.Background(), text)
	require.NoError(t, err)

	opts := testOptions()
	opts.NewID = func() string { return "other" }
	second, err := newTestEngine(t, newFake(), opts).ExtractAndMerge(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, second.Events, len(first.Events))
	for i := range first.Events {
		a, b := first.Events[i], second.Events[i]
		a.EventID, b.EventID = "", ""
		require.Equal(t, a, b)
	}
	require.True(t, first.Sentiment.Equal(second.Sentiment))
}

func TestLink_AcrossNarratives(t *testing.T) {
	e := newTestEngine(t, annotationtest.NewFake(), testOptions())
	ctx := context.Background()

	first, err := e.ExtractAndMerge(ctx, "I went to the park. She bought groceries.")
	require.NoError(t, err)
	res, err := e.Link(ctx, "", first.Events)
	require.NoError(t, err)
	require.Equal(t, 2, res.Size)

	second, err := e.ExtractAndMerge(ctx, "I went to the park again.")
	require.NoError(t, err)
	res, err = e.Link(ctx, res.Collection, second.Events)
	require.NoError(t, err)
	require.Equal(t, 2, res.Size)
	require.Equal(t, 1, res.Matched)

	var collection []v1.Event
	require.NoError(t, json.Unmarshal([]byte(res.Collection), &collection))
	require.Equal(t, 2, collection[0].Occurrences)
	require.Equal(t, collection, e.Collection(res.Collection))

	unchanged, err := e.Link(ctx, res.Collection, nil)
	require.NoError(t, err)
	require.Equal(t, res.Collection, unchanged.Collection)
}

func TestParagraphs(t *testing.T) {
	require.Equal(t, []string{"a b", "c"}, Paragraphs(" a b \n\n\tc\n"))
	require.Empty(t, Paragraphs(""))
}
