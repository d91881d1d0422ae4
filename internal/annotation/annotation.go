// Package annotation defines the contract of the linguistic annotation source:
// sentence boundaries, per-token part-of-speech and dependency roles, noun-phrase
// chunks and named entities. The annotation model itself runs out of process.
package annotation

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when the annotation source cannot be reached.
var ErrUnavailable = errors.New("annotation source unavailable")

// Annotator turns text into annotated sentences.
// Implementations must be deterministic for identical input within a process lifetime.
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]Sentence, error)
}

// Sentence is one annotated sentence.
type Sentence struct {
	Text     string   `json:"text"`
	Tokens   []Token  `json:"tokens"`
	Chunks   []Chunk  `json:"noun_chunks"`
	Entities []Entity `json:"entities"`
}

// Token is a single token. Head is the sentence-relative index of the token's
// syntactic head; the root token is its own head.
type Token struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
	Head  int    `json:"head"`
}

// Chunk is a noun-phrase chunk and the dependency role of its head token.
type Chunk struct {
	Text    string `json:"text"`
	RootDep string `json:"root_dep"`
}

// Entity is a named entity with its type label and character span.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start_char"`
	End   int    `json:"end_char"`
}

// Root returns the index of the sentence's root predicate: the token whose
// dependency role is root and whose part of speech is a verb or auxiliary.
func (s Sentence) Root() (int, bool) {
	for i, tok := range s.Tokens {
		if !strings.EqualFold(tok.Dep, "root") {
			continue
		}
		switch strings.ToUpper(tok.POS) {
		case "VERB", "AUX":
			return i, true
		}
	}
	return -1, false
}

// Children returns the tokens whose head is the token at index i, in sentence order.
func (s Sentence) Children(i int) []Token {
	var out []Token
	for j, tok := range s.Tokens {
		if j != i && tok.Head == i {
			out = append(out, tok)
		}
	}
	return out
}
