package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Annotate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "I went home.", req.Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sentences": [{
				"text": "I went home.",
				"tokens": [
					{"text": "I", "lemma": "I", "pos": "PRON", "dep": "nsubj", "head": 1},
					{"text": "went", "lemma": "go", "pos": "VERB", "dep": "ROOT", "head": 1},
					{"text": "home", "lemma": "home", "pos": "ADV", "dep": "advmod", "head": 1},
					{"text": ".", "lemma": ".", "pos": "PUNCT", "dep": "punct", "head": 1}
				],
				"noun_chunks": [{"text": "I", "root_dep": "nsubj"}],
				"entities": []
			}]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	sentences, err := client.Annotate(context.Background(), "I went home.")
	require.NoError(t, err)
	require.Len(t, sentences, 1)
	require.Len(t, sentences[0].Tokens, 4)
	require.Equal(t, "nsubj", sentences[0].Chunks[0].RootDep)

	root, ok := sentences[0].Root()
	require.True(t, ok)
	require.Equal(t, 1, root)
	require.Equal(t, "go", sentences[0].Tokens[root].Lemma)
}

func TestClient_Annotate_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Annotate(context.Background(), "Hello there.")
	require.ErrorIs(t, err, ErrUnavailable)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestClient_Annotate_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, time.Second)
	require.NoError(t, err)

	_, err = client.Annotate(context.Background(), "Hello there.")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Annotate_BlankTextSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	sentences, err := client.Annotate(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, sentences)
	require.False(t, called)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient("", time.Second)
	require.Error(t, err)
}

func TestSentence_RootAndChildren(t *testing.T) {
	tests := []struct {
		name     string
		sentence Sentence
		wantRoot int
		wantOK   bool
	}{
		{
			name: "verb root",
			sentence: Sentence{Tokens: []Token{
				{Text: "She", Dep: "nsubj", POS: "PRON", Head: 1},
				{Text: "ran", Dep: "ROOT", POS: "VERB", Head: 1},
			}},
			wantRoot: 1,
			wantOK:   true,
		},
		{
			name: "auxiliary root",
			sentence: Sentence{Tokens: []Token{
				{Text: "It", Dep: "nsubj", POS: "PRON", Head: 1},
				{Text: "is", Dep: "ROOT", POS: "AUX", Head: 1},
				{Text: "late", Dep: "acomp", POS: "ADJ", Head: 1},
			}},
			wantRoot: 1,
			wantOK:   true,
		},
		{
			name: "nominal root is not a predicate",
			sentence: Sentence{Tokens: []Token{
				{Text: "Good", Dep: "amod", POS: "ADJ", Head: 1},
				{Text: "morning", Dep: "ROOT", POS: "NOUN", Head: 1},
			}},
			wantRoot: -1,
			wantOK:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root, ok := tc.sentence.Root()
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantRoot, root)
		})
	}

	s := tests[1].sentence
	children := s.Children(1)
	require.Len(t, children, 2)
	require.Equal(t, "It", children[0].Text)
	require.Equal(t, "late", children[1].Text)
}
