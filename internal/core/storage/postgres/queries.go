package postgres

// SQL queries for journal entries and event collections

const (
	// queryInsertEntry inserts one analysed narrative. Entry ids are generated
	// by the service, so a conflict is a bug and surfaces as an error.
	queryInsertEntry = `
		INSERT INTO journal_entries (
			id, journal_id, transcription, sentiment_score, events_tagged, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// queryUpsertCollection replaces a journal's serialized event collection.
	queryUpsertCollection = `
		INSERT INTO event_collections (journal_id, events, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (journal_id) DO UPDATE
		SET events = EXCLUDED.events,
		    updated_at = EXCLUDED.updated_at
	`

	// queryListEntries returns a journal's timeline, newest first.
	// LIMIT NULL (passed for limit <= 0) returns all rows.
	queryListEntries = `
		SELECT
			id, journal_id, transcription, sentiment_score, events_tagged, created_at
		FROM journal_entries
		WHERE journal_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	queryLoadCollection = `
		SELECT events
		FROM event_collections
		WHERE journal_id = $1
	`
)
