package journal

import (
	"sort"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/aevon-lab/recall/internal/engine/canonical"
)

// GroupMainEvents groups the events of entries by canonical key and counts the
// entries mentioning each key. Keys mentioned by more than one entry are main
// events, represented by their earliest mention. entries is newest first.
func GroupMainEvents(entries []*v1.Entry) *v1.MainEventsResponse {
	counts := make(map[string]int)
	first := make(map[string]v1.Event)

	for i := len(entries) - 1; i >= 0; i-- {
		seen := make(map[string]struct{})
		for _, evt := range entries[i].EventsTagged {
			key := canonical.KeyString(canonical.Key(&evt))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
			if _, ok := first[key]; !ok {
				first[key] = evt
			}
		}
	}

	recurring := []v1.MainEvent{}
	for key, n := range counts {
		if n > 1 {
			recurring = append(recurring, v1.MainEvent{Key: key, Event: first[key], Entries: n})
		}
	}
	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].Entries != recurring[j].Entries {
			return recurring[i].Entries > recurring[j].Entries
		}
		return recurring[i].Key < recurring[j].Key
	})

	return &v1.MainEventsResponse{MainEvents: recurring, AllEvents: counts}
}
