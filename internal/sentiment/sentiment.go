// Package sentiment scores narratives against positive and negative word lists.
package sentiment

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ScorePlaces is the number of decimal places kept in a score.
const ScorePlaces = 4

var (
	defaultPositive = []string{"good", "great", "happy", "excellent", "fortunate", "correct", "superior"}
	defaultNegative = []string{"bad", "terrible", "sad", "poor", "unfortunate", "wrong", "inferior"}
)

// Lexicon holds the word lists used for scoring. Words compare case-insensitively.
type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: append([]string(nil), defaultPositive...),
		Negative: append([]string(nil), defaultNegative...),
	}
}

// LoadLexicon reads a lexicon from a YAML file. An empty path selects the
// built-in lexicon.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon file %s: %w", path, err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon file %s: %w", path, err)
	}
	if len(lex.Positive) == 0 && len(lex.Negative) == 0 {
		return Lexicon{}, fmt.Errorf("lexicon file %s: positive and negative lists are both empty", path)
	}
	return lex, nil
}

// Scorer computes lexicon sentiment scores.
type Scorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewScorer creates a Scorer for lex.
func NewScorer(lex Lexicon) *Scorer {
	return &Scorer{
		positive: wordSet(lex.Positive),
		negative: wordSet(lex.Negative),
	}
}

// Score returns (positive - negative) / alphabetic token count, rounded to
// ScorePlaces, over the given surface tokens. Tokens containing any
// non-letter rune are ignored. The score is 0 when no token is alphabetic.
func (s *Scorer) Score(tokens []string) decimal.Decimal {
	var pos, neg, total int64
	for _, tok := range tokens {
		if !isAlpha(tok) {
			continue
		}
		total++
		word := strings.ToLower(tok)
		if _, ok := s.positive[word]; ok {
			pos++
		}
		if _, ok := s.negative[word]; ok {
			neg++
		}
	}
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(pos - neg).DivRound(decimal.NewFromInt(total), ScorePlaces)
}

func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
