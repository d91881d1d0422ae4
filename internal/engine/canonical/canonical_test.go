package canonical

import (
	"testing"

	v1 "github.com/aevon-lab/recall/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func TestPrimary(t *testing.T) {
	tests := []struct {
		name  string
		event v1.Event
		want  string
	}{
		{
			name:  "subject action object",
			event: v1.Event{Subject: "I", Action: "went", Object: "the park"},
			want:  "i went park",
		},
		{
			name:  "trailing qualifier is stripped from object",
			event: v1.Event{Subject: "I", Action: "went", Object: "the park again"},
			want:  "i went park",
		},
		{
			name:  "whitespace and case are normalised",
			event: v1.Event{Subject: "  My   Sister ", Action: "Called", Object: "Mom"},
			want:  "my sister called mom",
		},
		{
			name:  "absent fields are skipped",
			event: v1.Event{Action: "rained"},
			want:  "rained",
		},
		{
			name:  "qualifier is not stripped from subject",
			event: v1.Event{Subject: "Ann too", Action: "left"},
			want:  "ann too left",
		},
		{
			name:  "no comparable fields",
			event: v1.Event{},
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Primary(&tc.event))
		})
	}
}

func TestExtended_AppendsLocations(t *testing.T) {
	e := v1.Event{Subject: "We", Action: "met", Object: "friends", Location: []string{"Paris", "the Louvre"}}
	require.Equal(t, "we met friends paris louvre", Extended(&e))
	require.Equal(t, "we met friends", Primary(&e))
}

func TestKey_IgnoresSetOrderAndDuplicates(t *testing.T) {
	a := v1.Event{Subject: "I", Action: "went", ActionLemma: "go", Object: "the park", Location: []string{"Paris", "Berlin"}, Time: []string{"Monday"}}
	b := v1.Event{Subject: "i", Action: "goes", ActionLemma: "go", Object: "park", Location: []string{"berlin", "Paris", "PARIS"}, Time: []string{"monday"}}

	require.Equal(t, KeyString(Key(&a)), KeyString(Key(&b)))
	require.Equal(t, []Pair{
		{Field: "subject", Value: "i"},
		{Field: "action", Value: "go"},
		{Field: "object", Value: "park"},
		{Field: "location", Value: "berlin"},
		{Field: "location", Value: "paris"},
		{Field: "time", Value: "monday"},
	}, Key(&a))
}

func TestKey_DistinguishesFields(t *testing.T) {
	a := v1.Event{Subject: "I", Action: "saw", Object: "Paris"}
	b := v1.Event{Subject: "I", Action: "saw", Location: []string{"Paris"}}
	require.NotEqual(t, KeyString(Key(&a)), KeyString(Key(&b)))
}
