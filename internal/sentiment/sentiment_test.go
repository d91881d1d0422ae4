package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestScorer_Score(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"no tokens", nil, "0"},
		{"punctuation only", []string{".", ",", "42"}, "0"},
		{"neutral", []string{"I", "went", "to", "the", "park", "."}, "0"},
		{"positive", []string{"It", "was", "a", "great", "day", "."}, "0.2"},
		{"negative case-insensitive", []string{"SAD", "news"}, "-0.5"},
		{"mixed cancels", []string{"good", "and", "bad"}, "0"},
		{"rounded to four places", []string{"happy", "a", "b"}, "0.3333"},
		{"non-alpha tokens excluded from count", []string{"happy", "2day", "can't"}, "1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(tc.tokens)
			require.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path uses defaults", func(t *testing.T) {
		lex, err := LoadLexicon("")
		require.NoError(t, err)
		require.Equal(t, DefaultLexicon(), lex)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(dir, "lexicon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positive: [calm, Joyful]\nnegative: [tired]\n"), 0o644))

		lex, err := LoadLexicon(path)
		require.NoError(t, err)
		require.Equal(t, []string{"calm", "Joyful"}, lex.Positive)

		s := NewScorer(lex)
		require.True(t, decimal.RequireFromString("0.5").Equal(s.Score([]string{"joyful", "morning"})))
		require.True(t, s.Score([]string{"good"}).IsZero())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLexicon(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positive: [unclosed\n"), 0o644))
		_, err := LoadLexicon(path)
		require.Error(t, err)
	})

	t.Run("empty lists", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positive: []\n"), 0o644))
		_, err := LoadLexicon(path)
		require.ErrorContains(t, err, "both empty")
	})
}
