// Package extract converts one annotated sentence into one structured event.
package extract

import (
	"strings"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/annotation"
	"github.com/google/uuid"
)

var (
	subjectDeps = map[string]bool{"nsubj": true, "nsubjpass": true, "nsubj:pass": true}
	objectDeps  = map[string]bool{"dobj": true, "obj": true, "attr": true, "pobj": true}

	timeLabels     = map[string]bool{"DATE": true, "TIME": true}
	locationLabels = map[string]bool{"GPE": true, "LOC": true, "FAC": true}
)

// Extractor builds events from annotated sentences.
type Extractor struct {
	nowFn func() time.Time
	idFn  func() string
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for extracted_at.
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) { x.nowFn = now }
}

// WithIDGenerator overrides the event id generator.
func WithIDGenerator(gen func() string) Option {
	return func(x *Extractor) { x.idFn = gen }
}

// New creates an Extractor using the wall clock and random UUIDs.
func New(opts ...Option) *Extractor {
	x := &Extractor{
		nowFn: func() time.Time { return time.Now().UTC() },
		idFn:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract returns the event described by sentence s, found at position index of
// its narrative. ok is false when the sentence has no verbal root predicate,
// which is an ordinary outcome and not an error.
func (x *Extractor) Extract(s annotation.Sentence, index int) (evt v1.Event, ok bool) {
	root, found := s.Root()
	if !found {
		return v1.Event{}, false
	}
	verb := s.Tokens[root]

	evt = v1.Event{
		EventID:        x.idFn(),
		Sentence:       strings.TrimSpace(s.Text),
		SentenceIndex:  index,
		ExtractedAt:    v1.NewTimestamp(x.nowFn()),
		Action:         verb.Text,
		ActionLemma:    verb.Lemma,
		Subjects:       chunksWithRole(s.Chunks, subjectDeps),
		Objects:        chunksWithRole(s.Chunks, objectDeps),
		Time:           []string{},
		Location:       []string{},
		AdditionalInfo: []string{},
		Entities:       []v1.Entity{},
	}
	if len(evt.Subjects) > 0 {
		evt.Subject = evt.Subjects[0]
	}
	if len(evt.Objects) > 0 {
		evt.Object = evt.Objects[0]
	}

	seenEntities := make(map[string]struct{}, len(s.Entities))
	for _, ent := range s.Entities {
		text := strings.TrimSpace(ent.Text)
		if text == "" {
			continue
		}
		label := strings.ToUpper(strings.TrimSpace(ent.Label))

		e := v1.Entity{Text: text, Label: label}
		if _, dup := seenEntities[e.Key()]; !dup {
			seenEntities[e.Key()] = struct{}{}
			evt.Entities = append(evt.Entities, e)
		}

		switch {
		case timeLabels[label]:
			evt.Time = appendUnique(evt.Time, text)
		case locationLabels[label]:
			evt.Location = appendUnique(evt.Location, text)
		}
	}

	for _, child := range s.Children(root) {
		if strings.EqualFold(child.Dep, "advmod") {
			evt.AdditionalInfo = appendUnique(evt.AdditionalInfo, child.Text)
		}
	}

	return evt, true
}

// chunksWithRole returns the non-empty texts of the chunks whose head has one of
// the given dependency roles, in sentence order, without duplicates.
func chunksWithRole(chunks []annotation.Chunk, roles map[string]bool) []string {
	out := []string{}
	for _, c := range chunks {
		text := strings.TrimSpace(c.Text)
		if text == "" || !roles[strings.ToLower(c.RootDep)] {
			continue
		}
		out = appendUnique(out, text)
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
