// Package taxonomy turns loosely structured spreadsheet grids into a typed
// catalog of analytics events and their attributes.
package taxonomy

import "time"

// DefaultPlatform is used when an event row leaves the platform cell empty.
const DefaultPlatform = "common"

// DataType is the normalized storage type of a parameter value.
type DataType string

const (
	TypeString    DataType = "STRING"
	TypeNumeric   DataType = "NUMERIC"
	TypeInt64     DataType = "INT64"
	TypeFloat64   DataType = "FLOAT64"
	TypeBool      DataType = "BOOL"
	TypeDate      DataType = "DATE"
	TypeTimestamp DataType = "TIMESTAMP"
)

// Scope identifies which repeated substructure a parameter value is read
// from: the event-level params, the per-line-item params, or the user
// properties.
type Scope string

const (
	ScopeEvent Scope = "Event"
	ScopeItem  Scope = "Item"
	ScopeUser  Scope = "User"
)

// Parameter is a named, typed, scoped attribute attached to an event.
type Parameter struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        DataType `json:"type"`
	Scope       Scope    `json:"scope"`
	Example     string   `json:"example"`
	Required    bool     `json:"required"`
}

// Event is a named analytics occurrence type with zero or more parameters.
// Event names are not deduplicated: two header rows with the same name yield
// two entries, and lookups resolve to the first.
type Event struct {
	EventName   string      `json:"event_name"`
	Description string      `json:"description"`
	Platform    string      `json:"platform"`
	Category    string      `json:"category"`
	Parameters  []Parameter `json:"parameters"`
}

// Metadata records provenance of a parse.
type Metadata struct {
	ParseDate time.Time `json:"parse_date"`
}

// Taxonomy is the parsed catalog: events in original sheet order plus
// project configuration keyed by canonical key. Immutable once produced.
type Taxonomy struct {
	Events      []Event           `json:"events"`
	ProjectInfo map[string]string `json:"project_info"`
	Metadata    Metadata          `json:"metadata"`
}

// EventByName returns the first event with the given name, or nil.
// First-match semantics are deliberate; duplicates are never merged.
func (t *Taxonomy) EventByName(name string) *Event {
	for i := range t.Events {
		if t.Events[i].EventName == name {
			return &t.Events[i]
		}
	}
	return nil
}
