package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
)

// marshalEventsTagged marshals an entry's events to JSON.
// A nil slice is stored as an empty array rather than "null".
func marshalEventsTagged(entry *v1.Entry) ([]byte, error) {
	events := entry.EventsTagged
	if events == nil {
		events = []v1.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events_tagged: %w", err)
	}
	return data, nil
}

// limitArg maps a non-positive limit to SQL NULL (no limit).
func limitArg(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntryRow scans a database row into an Entry struct.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEntryRow(row scanner) (*v1.Entry, error) {
	var entry v1.Entry
	var eventsJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.JournalID,
		&entry.Transcription,
		&entry.SentimentScore,
		&eventsJSON,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry row: %w", err)
	}

	entry.EventsTagged = []v1.Event{}
	if len(eventsJSON) > 0 {
		if err := json.Unmarshal(eventsJSON, &entry.EventsTagged); err != nil {
			return nil, fmt.Errorf("failed to unmarshal events_tagged: %w", err)
		}
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	return &entry, nil
}
