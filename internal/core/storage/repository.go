package storage

import (
	"context"
	"errors"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
)

// ErrNotFound is returned when a journal has no persisted event collection yet.
var ErrNotFound = errors.New("not found")

// JournalStore persists journal entries and each journal's event collection.
type JournalStore interface {
	// SaveEntry stores entry and replaces its journal's serialized event
	// collection in one transaction.
	SaveEntry(ctx context.Context, entry *v1.Entry, collection string) error

	// ListEntries returns a journal's entries, newest first. limit <= 0 means no limit.
	ListEntries(ctx context.Context, journalID string, limit int) ([]*v1.Entry, error)

	// LoadCollection returns the serialized event collection of a journal, or
	// ErrNotFound when nothing has been stored for it.
	LoadCollection(ctx context.Context, journalID string) (string, error)
}
