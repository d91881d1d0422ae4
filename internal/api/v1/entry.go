package v1

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one analysed narrative in a journal.
type Entry struct {
	ID             string          `json:"id"`
	JournalID      string          `json:"journal_id"`
	Transcription  string          `json:"transcription"`
	SentimentScore decimal.Decimal `json:"sentiment_score"`

	// EventsTagged holds the de-duplicated events extracted from this entry only.
	EventsTagged []Event `json:"events_tagged"`

	CreatedAt time.Time `json:"created_at"`
}

// AnalyzeRequest is the body accepted by the analysis and entry endpoints.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Validate ensures the request carries some narrative text.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// AnalyzeResponse is returned by the stateless analysis endpoint.
type AnalyzeResponse struct {
	SentimentScore decimal.Decimal `json:"sentiment_score"`
	Events         []Event         `json:"events"`
}

// EntryResponse is returned after an entry has been analysed and linked into its journal.
type EntryResponse struct {
	Entry          *Entry `json:"entry"`
	CollectionSize int    `json:"collection_size"`
}

// MainEvent is an event recurring across more than one entry of a journal.
type MainEvent struct {
	Key     string `json:"key"`
	Event   Event  `json:"event"`
	Entries int    `json:"entries"`
}

// MainEventsResponse lists recurring events and the entry count of every canonical key.
type MainEventsResponse struct {
	MainEvents []MainEvent    `json:"main_events"`
	AllEvents  map[string]int `json:"all_events"`
}
