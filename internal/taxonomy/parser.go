package taxonomy

import (
	"errors"
	"strings"
	"time"

	"github.com/taxolab/taxoquery/internal/sheets"
)

// ErrInvalidDocument is returned when the document has no sheet collection.
// Every other malformed-data situation degrades to empty or default values;
// that defensiveness is part of the parsing contract, not an accident.
var ErrInvalidDocument = errors.New("spreadsheet document has no sheets")

// Parser converts spreadsheet documents into Taxonomy values. It is
// stateless; the zero value is ready to use.
type Parser struct {
	now func() time.Time
}

// NewParser creates a parser stamping parse metadata with the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse routes each sheet by name and assembles a fresh Taxonomy.
// A sheet whose title contains "event" or "taxonomy" is the events table;
// one containing "project" or "info" is the project-info table. Unmatched
// sheets are ignored; when several sheets match a role the last one wins.
func (p *Parser) Parse(doc *sheets.Document) (*Taxonomy, error) {
	if doc == nil || doc.Sheets == nil {
		return nil, ErrInvalidDocument
	}

	tax := &Taxonomy{
		Events:      []Event{},
		ProjectInfo: map[string]string{},
		Metadata:    Metadata{ParseDate: p.now().UTC()},
	}

	for _, sheet := range doc.Sheets {
		rows := sheet.Rows()
		if rows == nil {
			continue
		}

		title := strings.ToLower(sheet.Properties.Title)
		switch {
		case strings.Contains(title, "event") || strings.Contains(title, "taxonomy"):
			tax.Events = parseEventRows(rows)
		case strings.Contains(title, "project") || strings.Contains(title, "info"):
			tax.ProjectInfo = parseProjectInfoRows(rows)
		}
	}

	return tax, nil
}

// eventRow gives the positional cell convention named fields. Column layout:
// 0-3 describe an event header, 4-9 describe a parameter row.
type eventRow struct {
	eventName   string // col 0
	description string // col 1
	platform    string // col 2
	category    string // col 3

	paramName        string // col 4
	paramDescription string // col 5
	paramType        string // col 6
	paramScope       string // col 7
	paramExample     string // col 8
	paramRequired    string // col 9
}

func newEventRow(row sheets.RowData) eventRow {
	cell := func(i int) string {
		if i < len(row.Values) {
			return row.Values[i].Text()
		}
		return ""
	}
	return eventRow{
		eventName:        cell(0),
		description:      cell(1),
		platform:         cell(2),
		category:         cell(3),
		paramName:        cell(4),
		paramDescription: cell(5),
		paramType:        cell(6),
		paramScope:       cell(7),
		paramExample:     cell(8),
		paramRequired:    cell(9),
	}
}

// isHeader reports whether the row opens a new event.
func (r eventRow) isHeader() bool { return r.eventName != "" }

// isParameter reports whether the row adds a parameter to the current event.
func (r eventRow) isParameter() bool { return r.paramName != "" }

func (r eventRow) event() Event {
	platform := r.platform
	if platform == "" {
		platform = DefaultPlatform
	}
	return Event{
		EventName:   r.eventName,
		Description: r.description,
		Platform:    platform,
		Category:    r.category,
		Parameters:  []Parameter{},
	}
}

func (r eventRow) parameter() Parameter {
	return Parameter{
		Name:        r.paramName,
		Description: r.paramDescription,
		Type:        NormalizeDataType(r.paramType),
		Scope:       NormalizeScope(r.paramScope),
		Example:     r.paramExample,
		Required:    r.paramRequired == "Y" || r.paramRequired == "true",
	}
}

// parseEventRows runs a two-state machine over the sheet rows: awaiting an
// event header, or accumulating parameter rows under the current event. The
// sparse convention has no explicit delimiter between events other than a
// new non-empty name cell; blank rows are separators and are skipped.
func parseEventRows(rows []sheets.RowData) []Event {
	events := []Event{}
	var current *Event

	for i, raw := range rows {
		if i == 0 {
			// header row
			continue
		}
		if len(raw.Values) == 0 {
			continue
		}

		row := newEventRow(raw)
		switch {
		case row.isHeader():
			if current != nil {
				events = append(events, *current)
			}
			evt := row.event()
			current = &evt
		case row.isParameter() && current != nil:
			current.Parameters = append(current.Parameters, row.parameter())
		}
	}

	if current != nil {
		events = append(events, *current)
	}
	return events
}

// parseProjectInfoRows reads key/value pairs from the first two columns.
// Later rows overwrite earlier ones sharing a canonical key.
func parseProjectInfoRows(rows []sheets.RowData) map[string]string {
	info := map[string]string{}
	for _, raw := range rows {
		if len(raw.Values) < 2 {
			continue
		}
		key := raw.Values[0].Text()
		value := raw.Values[1].Text()
		if key == "" || value == "" {
			continue
		}
		info[normalizeProjectKey(key)] = value
	}
	return info
}

// ParseSimple builds a flat taxonomy from a plain value range (one header
// row, one event per row, no parameter rows). Column positions are resolved
// from the header by substring so exports with reordered columns still parse.
func (p *Parser) ParseSimple(values [][]string) *Taxonomy {
	tax := &Taxonomy{
		Events:      []Event{},
		ProjectInfo: map[string]string{},
		Metadata:    Metadata{ParseDate: p.now().UTC()},
	}
	if len(values) == 0 {
		return tax
	}

	headerIndex := func(substr string) int {
		for i, h := range values[0] {
			if strings.Contains(strings.ToLower(h), substr) {
				return i
			}
		}
		return -1
	}
	nameIdx := headerIndex("event")
	descIdx := headerIndex("description")
	platformIdx := headerIndex("platform")

	col := func(row []string, idx, fallback int) string {
		if idx < 0 {
			idx = fallback
		}
		if idx >= 0 && idx < len(row) {
			return row[idx]
		}
		return ""
	}

	for _, row := range values[1:] {
		name := col(row, nameIdx, 0)
		if name == "" {
			continue
		}
		platform := col(row, platformIdx, -1)
		if platform == "" {
			platform = DefaultPlatform
		}
		tax.Events = append(tax.Events, Event{
			EventName:   name,
			Description: col(row, descIdx, -1),
			Platform:    platform,
			Parameters:  []Parameter{},
		})
	}
	return tax
}
