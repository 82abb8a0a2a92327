package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taxolab/taxoquery/internal/sheets"
)

// grid builds sheet rows from plain string cells.
func grid(rows ...[]string) []sheets.RowData {
	out := make([]sheets.RowData, len(rows))
	for i, row := range rows {
		cells := make([]sheets.CellData, len(row))
		for j, v := range row {
			cells[j] = sheets.CellData{FormattedValue: v}
		}
		out[i] = sheets.RowData{Values: cells}
	}
	return out
}

func doc(title string, rows []sheets.RowData) *sheets.Document {
	return &sheets.Document{Sheets: []sheets.Sheet{{
		Properties: sheets.SheetProperties{Title: title},
		Data:       []sheets.GridData{{RowData: rows}},
	}}}
}

func TestParse_NilDocument(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(nil)
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = p.Parse(&sheets.Document{})
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParse_SingleEventNoParameters(t *testing.T) {
	p := NewParser()

	tax, err := p.Parse(doc("Event Taxonomy", grid(
		[]string{"Event", "Desc"},
		[]string{"purchase", "Buy event"},
	)))
	require.NoError(t, err)
	require.Len(t, tax.Events, 1)
	require.Equal(t, "purchase", tax.Events[0].EventName)
	require.Equal(t, "Buy event", tax.Events[0].Description)
	require.Equal(t, DefaultPlatform, tax.Events[0].Platform)
	require.Empty(t, tax.Events[0].Parameters)
}

func TestParse_EventsWithInterleavedParameterRows(t *testing.T) {
	p := NewParser()

	tax, err := p.Parse(doc("events", grid(
		[]string{"Event Name", "Description", "Platform", "Category", "Parameter", "Param Desc", "Type", "Scope", "Example", "Required"},
		[]string{"purchase", "Buy event", "web", "commerce"},
		[]string{"", "", "", "", "value", "order value", "number", "Event", "19.99", "Y"},
		[]string{"", "", "", "", "item_tier", "tier", "string", "Item", "gold", ""},
		[]string{}, // separator
		[]string{"login", "Sign in", "", "account"},
		[]string{"", "", "", "", "method", "auth method", "string", "Event", "google", "true"},
	)))
	require.NoError(t, err)
	require.Len(t, tax.Events, 2)

	purchase := tax.Events[0]
	require.Equal(t, "purchase", purchase.EventName)
	require.Equal(t, "web", purchase.Platform)
	require.Equal(t, "commerce", purchase.Category)
	require.Len(t, purchase.Parameters, 2)
	require.Equal(t, Parameter{
		Name: "value", Description: "order value",
		Type: TypeNumeric, Scope: ScopeEvent,
		Example: "19.99", Required: true,
	}, purchase.Parameters[0])
	require.Equal(t, ScopeItem, purchase.Parameters[1].Scope)
	require.False(t, purchase.Parameters[1].Required)

	login := tax.Events[1]
	require.Equal(t, "login", login.EventName)
	require.Equal(t, DefaultPlatform, login.Platform)
	require.Len(t, login.Parameters, 1)
	require.True(t, login.Parameters[0].Required)
}

func TestParse_OrphanParameterRowsAreDropped(t *testing.T) {
	p := NewParser()

	// Parameter row before any event header has no owner and is skipped.
	tax, err := p.Parse(doc("taxonomy", grid(
		[]string{"Event", "Desc"},
		[]string{"", "", "", "", "stray", "no owner"},
		[]string{"page_view", "Page view"},
	)))
	require.NoError(t, err)
	require.Len(t, tax.Events, 1)
	require.Empty(t, tax.Events[0].Parameters)
}

func TestParse_DuplicateEventNamesAreKept(t *testing.T) {
	p := NewParser()

	tax, err := p.Parse(doc("events", grid(
		[]string{"Event", "Desc"},
		[]string{"purchase", "first"},
		[]string{"purchase", "second"},
	)))
	require.NoError(t, err)
	require.Len(t, tax.Events, 2)

	// Lookups resolve to the first entry.
	require.Equal(t, "first", tax.EventByName("purchase").Description)
	require.Nil(t, tax.EventByName("missing"))
}

func TestParse_ProjectInfoSheet(t *testing.T) {
	p := NewParser()

	tax, err := p.Parse(&sheets.Document{Sheets: []sheets.Sheet{
		{
			Properties: sheets.SheetProperties{Title: "Project Info"},
			Data: []sheets.GridData{{RowData: grid(
				[]string{"GA4 Property ID", "123456"},
				[]string{"BigQuery Project", "my-project"},
				[]string{"Dataset", "analytics_123456"},
				[]string{"only-key"},
				[]string{"", "only-value"},
				[]string{"BQ", "overwritten-project"},
			)}},
		},
	}})
	require.NoError(t, err)
	require.Empty(t, tax.Events)
	require.Equal(t, map[string]string{
		"ga4_property_id":  "123456",
		"bigquery_project": "overwritten-project",
		"dataset_id":       "analytics_123456",
	}, tax.ProjectInfo)
}

func TestParse_LastMatchingSheetWins(t *testing.T) {
	p := NewParser()

	tax, err := p.Parse(&sheets.Document{Sheets: []sheets.Sheet{
		{
			Properties: sheets.SheetProperties{Title: "Events v1"},
			Data:       []sheets.GridData{{RowData: grid([]string{"Event"}, []string{"old_event"})}},
		},
		{
			Properties: sheets.SheetProperties{Title: "Ignored Notes"},
			Data:       []sheets.GridData{{RowData: grid([]string{"anything"})}},
		},
		{
			Properties: sheets.SheetProperties{Title: "Events v2"},
			Data:       []sheets.GridData{{RowData: grid([]string{"Event"}, []string{"new_event"})}},
		},
	}})
	require.NoError(t, err)
	require.Len(t, tax.Events, 1)
	require.Equal(t, "new_event", tax.Events[0].EventName)
}

func TestParseSimple(t *testing.T) {
	p := NewParser()

	tax := p.ParseSimple([][]string{
		{"Event Name", "Description", "Platform"},
		{"page_view", "Page view", "web"},
		{"", "skipped", ""},
		{"sign_up", "Registration", ""},
	})
	require.Len(t, tax.Events, 2)
	require.Equal(t, "page_view", tax.Events[0].EventName)
	require.Equal(t, "web", tax.Events[0].Platform)
	require.Equal(t, DefaultPlatform, tax.Events[1].Platform)

	require.Empty(t, p.ParseSimple(nil).Events)
}
