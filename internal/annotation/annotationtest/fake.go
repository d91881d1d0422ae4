// Package annotationtest provides an in-memory Annotator for tests.
package annotationtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aevon-lab/recall/internal/annotation"
)

// Fake is a deterministic Annotator. Text is split into sentences on '.', '!'
// and '?'; each sentence is parsed by a tiny subject-verb-object grammar
// driven by the Verbs lexicon. Registered sentences override the grammar.
type Fake struct {
	mu        sync.Mutex
	sentences map[string]annotation.Sentence
	// Verbs maps a surface verb form to its lemma.
	Verbs map[string]string
	// Entities maps a surface phrase to an entity label.
	Entities map[string]string
	// Err, when set, is returned by every call.
	Err error

	Calls int
}

// NewFake returns a Fake with a small default verb lexicon.
func NewFake() *Fake {
	return &Fake{
		sentences: make(map[string]annotation.Sentence),
		Verbs: map[string]string{
			"went": "go", "go": "go", "goes": "go",
			"visited": "visit", "called": "call", "bought": "buy",
			"ate": "eat", "had": "have", "met": "meet", "saw": "see",
			"walked": "walk", "is": "be", "was": "be",
		},
		Entities: map[string]string{},
	}
}

// Register fixes the annotation returned for a sentence text.
func (f *Fake) Register(s annotation.Sentence) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentences[strings.TrimSpace(s.Text)] = s
}

// Annotate implements annotation.Annotator.
func (f *Fake) Annotate(_ context.Context, text string) ([]annotation.Sentence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}

	var out []annotation.Sentence
	for _, raw := range splitSentences(text) {
		if s, ok := f.sentences[raw]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, f.parse(raw))
	}
	return out, nil
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

var (
	prepositions = map[string]bool{"to": true, "at": true, "in": true, "with": true, "from": true}
	determiners  = map[string]bool{"the": true, "a": true, "an": true, "my": true}
	adverbs      = map[string]bool{"again": true, "quickly": true, "finally": true, "never": true, "also": true}
)

// parse builds an annotation for "<subject> <verb> [prep] [det] <object> [advmod]".
func (f *Fake) parse(raw string) annotation.Sentence {
	s := annotation.Sentence{Text: raw}
	words := strings.Fields(strings.TrimRight(raw, ".!?"))

	root := -1
	for i, w := range words {
		if _, ok := f.Verbs[strings.ToLower(w)]; ok {
			root = i
			break
		}
	}

	for i, w := range words {
		tok := annotation.Token{Text: w, Lemma: strings.ToLower(w), POS: "NOUN", Dep: "dep", Head: root}
		lw := strings.ToLower(w)
		switch {
		case i == root:
			tok.Lemma = f.Verbs[lw]
			tok.POS = "VERB"
			tok.Dep = "ROOT"
			tok.Head = i
		case root < 0:
			tok.Head = i
			if i == 0 {
				tok.Dep = "ROOT"
			}
		case i < root:
			tok.POS = "PRON"
			tok.Dep = "nsubj"
		case prepositions[lw]:
			tok.POS = "ADP"
			tok.Dep = "prep"
		case determiners[lw]:
			tok.POS = "DET"
			tok.Dep = "det"
		case adverbs[lw]:
			tok.POS = "ADV"
			tok.Dep = "advmod"
		default:
			tok.Dep = "dobj"
			if i > 0 && (prepositions[strings.ToLower(words[i-1])] || (i > 1 && determiners[strings.ToLower(words[i-1])] && prepositions[strings.ToLower(words[i-2])])) {
				tok.Dep = "pobj"
			}
		}
		s.Tokens = append(s.Tokens, tok)
	}

	if root > 0 {
		s.Chunks = append(s.Chunks, annotation.Chunk{Text: strings.Join(words[:root], " "), RootDep: "nsubj"})
	}
	for i, tok := range s.Tokens {
		if tok.Dep != "dobj" && tok.Dep != "pobj" {
			continue
		}
		text := tok.Text
		if i > 0 && determiners[strings.ToLower(words[i-1])] {
			text = words[i-1] + " " + text
		}
		s.Chunks = append(s.Chunks, annotation.Chunk{Text: text, RootDep: tok.Dep})
	}

	for phrase, label := range f.Entities {
		if idx := strings.Index(raw, phrase); idx >= 0 {
			s.Entities = append(s.Entities, annotation.Entity{Text: phrase, Label: label, Start: idx, End: idx + len(phrase)})
		}
	}
	sort.Slice(s.Entities, func(i, j int) bool { return s.Entities[i].Start < s.Entities[j].Start })
	return s
}
