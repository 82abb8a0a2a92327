// Package sheets models the spreadsheet grid shape consumed by the taxonomy
// parser and the helpers needed to address a spreadsheet. Fetching the grid
// itself is the job of an external Reader implementation.
package sheets

import "context"

// Document is a spreadsheet with one or more sheets. The JSON shape mirrors
// the Sheets API `spreadsheets.get` response with includeGridData=true, so a
// raw API payload decodes directly into it.
type Document struct {
	Sheets []Sheet `json:"sheets"`
}

// Sheet is a single tab: a title plus grid data.
type Sheet struct {
	Properties SheetProperties `json:"properties"`
	Data       []GridData      `json:"data,omitempty"`
}

// SheetProperties carries the sheet title used for role routing.
type SheetProperties struct {
	Title string `json:"title"`
}

// GridData is one contiguous block of rows. The API may return several blocks
// per sheet; the parser only reads the first.
type GridData struct {
	RowData []RowData `json:"rowData,omitempty"`
}

// RowData is one row of cells.
type RowData struct {
	Values []CellData `json:"values,omitempty"`
}

// CellData is a single cell. Either the formatted display string or the typed
// effective value may be absent.
type CellData struct {
	FormattedValue string         `json:"formattedValue,omitempty"`
	EffectiveValue *ExtendedValue `json:"effectiveValue,omitempty"`
}

// ExtendedValue is the typed cell value variant the parser cares about.
type ExtendedValue struct {
	StringValue string `json:"stringValue,omitempty"`
}

// Text returns the display text of a cell: the formatted value when present,
// the effective string value otherwise, "" for empty cells.
func (c CellData) Text() string {
	if c.FormattedValue != "" {
		return c.FormattedValue
	}
	if c.EffectiveValue != nil {
		return c.EffectiveValue.StringValue
	}
	return ""
}

// Rows returns the first grid block of the sheet, or nil when the sheet
// carries no grid data.
func (s Sheet) Rows() []RowData {
	if len(s.Data) == 0 {
		return nil
	}
	return s.Data[0].RowData
}

// Reader fetches spreadsheet contents from the spreadsheet service.
// Implementations live outside this module; tests use fixture documents.
type Reader interface {
	// GetDocument fetches the full grid of a spreadsheet.
	GetDocument(ctx context.Context, spreadsheetID string) (*Document, error)

	// GetValues fetches a single range as formatted cell values.
	GetValues(ctx context.Context, spreadsheetID, valueRange string) ([][]string, error)
}
