package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Event is one occurrence mentioned in a narrative: who did what, to what, when and where.
// Raw events come out of the extractor; merged and linked events additionally carry
// the aggregation metadata (Occurrences, FirstMentioned, ...).
type Event struct {
	// --- Identity and provenance ---

	// EventID is assigned at extraction. A merged event keeps the id of the
	// event that absorbed the others.
	EventID string `json:"event_id"`

	// Sentence is the source text span the event was extracted from.
	Sentence string `json:"sentence"`

	// SentenceIndex is the position of Sentence within its narrative.
	SentenceIndex int `json:"sentence_index"`

	ExtractedAt Timestamp `json:"extracted_at"`

	// --- Semantic fields ---

	// Subject is the primary actor; always the first non-empty member of Subjects.
	Subject  string   `json:"subject,omitempty"`
	Subjects []string `json:"subjects"`

	// Action is the surface form of the sentence's root predicate, ActionLemma its base form.
	Action      string `json:"action"`
	ActionLemma string `json:"action_lemma"`

	// Object is the primary affected entity; always the first non-empty member of Objects.
	Object  string   `json:"object,omitempty"`
	Objects []string `json:"objects"`

	Time           []string `json:"time"`
	Location       []string `json:"location"`
	AdditionalInfo []string `json:"additional_info"`
	Entities       []Entity `json:"entities"`

	// --- Aggregation metadata (absent on raw extraction) ---

	Occurrences     int       `json:"occurrences,omitempty"`
	FirstMentioned  Timestamp `json:"first_mentioned,omitzero"`
	LastMentioned   Timestamp `json:"last_mentioned,omitzero"`
	RawSentences    []string  `json:"raw_sentences,omitempty"`
	SentenceIndices []int     `json:"sentence_indices,omitempty"`

	// Extra holds members this version does not know about, e.g. fields added
	// by another producer. They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// Entity is a named entity found in a sentence, e.g. {"Paris", "GPE"}.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Key identifies an entity for de-duplication: entity text compares case-insensitively.
func (e Entity) Key() string {
	return strings.ToLower(e.Text) + "\x00" + e.Label
}

// ActionLemmaOrAction returns the verb's base form, falling back to its surface form.
func (e Event) ActionLemmaOrAction() string {
	if e.ActionLemma != "" {
		return e.ActionLemma
	}
	return e.Action
}

// Clone returns a deep copy so that merging into the copy never aliases the
// slices of the original.
func (e Event) Clone() Event {
	c := e
	c.Subjects = cloneStrings(e.Subjects)
	c.Objects = cloneStrings(e.Objects)
	c.Time = cloneStrings(e.Time)
	c.Location = cloneStrings(e.Location)
	c.AdditionalInfo = cloneStrings(e.AdditionalInfo)
	c.RawSentences = cloneStrings(e.RawSentences)
	if e.Entities != nil {
		c.Entities = append([]Entity(nil), e.Entities...)
	}
	if e.SentenceIndices != nil {
		c.SentenceIndices = append([]int(nil), e.SentenceIndices...)
	}
	if e.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(e.Extra))
		for k, v := range e.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// eventFields is Event without its JSON methods.
type eventFields Event

var knownEventFields = jsonFieldNames(reflect.TypeOf(eventFields{}))

func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = t.Field(i).Name
		}
		names[strings.ToLower(name)] = struct{}{}
	}
	return names
}

// MarshalJSON encodes the event followed by its Extra members.
func (e Event) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(eventFields(e))
	if err != nil || len(e.Extra) == 0 {
		return data, err
	}

	members := make(map[string]json.RawMessage, len(knownEventFields)+len(e.Extra))
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, known := knownEventFields[strings.ToLower(k)]; !known {
			members[k] = v
		}
	}
	return json.Marshal(members)
}

// UnmarshalJSON decodes an event, reading integer fields leniently (2.0 is 2)
// and keeping unknown members in Extra.
func (e *Event) UnmarshalJSON(data []byte) error {
	aux := struct {
		*eventFields
		SentenceIndex   wholeNumber   `json:"sentence_index"`
		Occurrences     wholeNumber   `json:"occurrences"`
		SentenceIndices []wholeNumber `json:"sentence_indices"`
	}{eventFields: (*eventFields)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.SentenceIndex = int(aux.SentenceIndex)
	e.Occurrences = int(aux.Occurrences)
	e.SentenceIndices = nil
	if aux.SentenceIndices != nil {
		e.SentenceIndices = make([]int, len(aux.SentenceIndices))
		for i, n := range aux.SentenceIndices {
			e.SentenceIndices[i] = int(n)
		}
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	e.Extra = nil
	for k, v := range members {
		if _, known := knownEventFields[strings.ToLower(k)]; known {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]json.RawMessage)
		}
		e.Extra[k] = v
	}
	return nil
}

// maxWholeNumber is the largest integer a float64 holds exactly.
const maxWholeNumber = 1 << 53

// wholeNumber is an int that also decodes from a float spelling of a whole
// number, as written by producers that keep every number as a float.
type wholeNumber int

func (n *wholeNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxWholeNumber {
		return fmt.Errorf("expected a whole number, got %s", data)
	}
	*n = wholeNumber(f)
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// Timestamp is a time.Time that tolerates the timestamp layouts found in
// collections written by older producers (naive ISO-8601, space separated,
// short "+00" zones). A string in no known layout is kept verbatim and written
// back as it was read.
type Timestamp struct {
	time.Time
	raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// IsZero reports whether the timestamp holds neither a time nor an unparsed value.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.raw == ""
}

// Raw returns the text of a timestamp that could not be parsed.
func (t Timestamp) Raw() string {
	return t.raw
}

// MarshalJSON encodes the timestamp as RFC 3339 with nanoseconds, the
// unparsed text it was read from, or null when zero.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Time.IsZero() {
		return json.Marshal(t.UTC().Format(time.RFC3339Nano))
	}
	if t.raw != "" {
		return json.Marshal(t.raw)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, RFC 3339 and the legacy layouts. Anything else
// that is a string is kept as raw text; non-string values decode as zero.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.raw = s
	return nil
}

// Validate checks the fields every extracted event must carry.
func (e *Event) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.Occurrences < 0 {
		return fmt.Errorf("occurrences must be >= 0, got %d", e.Occurrences)
	}
	if len(e.RawSentences) != len(e.SentenceIndices) {
		return fmt.Errorf("raw_sentences (%d) and sentence_indices (%d) must have the same length",
			len(e.RawSentences), len(e.SentenceIndices))
	}
	return nil
}
