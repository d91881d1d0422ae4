// Package journal serves the journal HTTP API: it analyses narratives with
// the engine, links their events into the journal's event collection, and
// persists both under a per-journal writer lock.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/core/lock"
	"github.com/aevon-lab/recall/internal/core/storage"
	"github.com/aevon-lab/recall/internal/engine"
	"github.com/aevon-lab/recall/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Service struct {
	engine           *engine.Engine
	store            storage.JournalStore
	locker           lock.Locker
	metrics          *metrics.Metrics
	maxBodySizeBytes int

	now   func() time.Time
	newID func() string
}

func NewService(eng *engine.Engine, store storage.JournalStore, locker lock.Locker, m *metrics.Metrics, maxBodySizeMB int) *Service {
	if eng == nil {
		panic("journal: engine must not be nil")
	}
	if store == nil {
		panic("journal: store must not be nil")
	}
	if locker == nil {
		panic("journal: locker must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		engine:           eng,
		store:            store,
		locker:           locker,
		metrics:          m,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            func() string { return uuid.New().String() },
	}
}

// RegisterRoutes registers the journal service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/analyze", s.AnalyzeHandler)

	journals := r.Group("/v1/journals/:journal_id")
	journals.POST("/entries", s.AddEntryHandler)
	journals.GET("/entries", s.TimelineHandler)
	journals.GET("/events", s.EventsHandler)
	journals.GET("/events/main", s.MainEventsHandler)
}

// AddEntry analyses text, links its events into the journal's collection and
// stores the entry together with the updated collection.
//
// Analysis runs before the writer lock is taken; only the load-link-save
// sequence is serialised per journal. When the lock expires, that sequence
// runs under a deadline inside the lock TTL so an entry is never saved after
// another writer could have taken over.
func (s *Service) AddEntry(ctx context.Context, journalID, text string) (*v1.EntryResponse, error) {
	analysis, err := s.engine.ExtractAndMerge(ctx, text)
	if err != nil {
		return nil, err
	}

	if ttl := s.locker.TTL(); ttl > 0 {
		// Started before Lock, so the deadline precedes the lock's expiry.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lock.Budget(ttl))
		defer cancel()
	}

	unlock, err := s.locker.Lock(ctx, journalID)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Use a fresh context so a cancelled request still releases the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			slog.Warn("[Journal] Failed to release writer lock", "journal_id", journalID, "error", err)
		}
	}()

	prior, err := s.store.LoadCollection(ctx, journalID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load event collection: %w", err)
	}

	result, err := s.engine.Link(ctx, prior, analysis.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to link events: %w", err)
	}

	entry := &v1.Entry{
		ID:             s.newID(),
		JournalID:      journalID,
		Transcription:  text,
		SentimentScore: analysis.Sentiment,
		EventsTagged:   analysis.Events,
		CreatedAt:      s.now(),
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("writer lock budget exhausted before save: %w", err)
	}
	if err := s.store.SaveEntry(ctx, entry, result.Collection); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	s.metrics.EntrySaved()

	slog.Info("[Journal] Entry saved",
		"journal_id", journalID,
		"entry_id", entry.ID,
		"events", len(entry.EventsTagged),
		"matched", result.Matched,
		"appended", result.Appended,
		"collection_size", result.Size)

	return &v1.EntryResponse{Entry: entry, CollectionSize: result.Size}, nil
}

// Timeline returns a journal's entries, newest first.
func (s *Service) Timeline(ctx context.Context, journalID string, limit int) ([]*v1.Entry, error) {
	entries, err := s.store.ListEntries(ctx, journalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if entries == nil {
		entries = []*v1.Entry{}
	}
	return entries, nil
}

// Events returns the journal's current event collection. It returns
// storage.ErrNotFound when the journal has no entries yet.
func (s *Service) Events(ctx context.Context, journalID string) ([]v1.Event, error) {
	serialized, err := s.store.LoadCollection(ctx, journalID)
	if err != nil {
		return nil, err
	}
	return s.engine.Collection(serialized), nil
}

// MainEvents reports the events recurring across more than one of the journal's entries.
func (s *Service) MainEvents(ctx context.Context, journalID string) (*v1.MainEventsResponse, error) {
	entries, err := s.store.ListEntries(ctx, journalID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return GroupMainEvents(entries), nil
}
