package bigquery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportFormat selects the serialization of exported query results.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// UnsupportedFormatError is returned for export formats this module cannot
// produce.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

// Export serializes a query result in the requested format.
func Export(result *QueryResult, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatCSV:
		return []byte(ConvertToCSV(result.Rows, result.Schema)), nil
	case FormatJSON:
		return json.MarshalIndent(result.Rows, "", "  ")
	default:
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
}

// ConvertToCSV renders rows as CSV text with a schema-derived header line.
// Empty input yields "".
func ConvertToCSV(rows []Row, schema []FieldSchema) string {
	if len(rows) == 0 {
		return ""
	}

	headers := make([]string, len(schema))
	for i, field := range schema {
		headers[i] = field.Name
	}

	lines := []string{strings.Join(headers, ",")}
	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = escapeCSVValue(v)
		}
		lines = append(lines, strings.Join(values, ","))
	}
	return strings.Join(lines, "\n")
}

// escapeCSVValue quotes values containing commas, quotes or newlines.
func escapeCSVValue(v any) string {
	if v == nil {
		return ""
	}
	s := fmt.Sprintf("%v", v)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
