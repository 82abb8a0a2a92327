package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taxolab/taxoquery/internal/taxonomy"
)

var columnSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeColumn turns a parameter name into a safe column alias.
func sanitizeColumn(name string) string {
	return columnSanitizer.ReplaceAllString(name, "_")
}

// valueFieldForType picks the GA4 key/value sub-field a typed parameter is
// read from. BOOL, DATE and TIMESTAMP have no dedicated slot in the export
// schema and are stored as strings.
func valueFieldForType(t taxonomy.DataType) string {
	switch taxonomy.NormalizeDataType(string(t)) {
	case taxonomy.TypeNumeric, taxonomy.TypeFloat64:
		return "double_value"
	case taxonomy.TypeInt64:
		return "int_value"
	default:
		return "string_value"
	}
}

// ExtractionExprs builds one aliased column-extraction expression per
// parameter, in input order. The expression shape depends on the parameter's
// scope: event params and user properties are key lookups in their
// respective repeated collections; item params take the first value found
// across the line items.
func ExtractionExprs(params []taxonomy.Parameter) []string {
	exprs := make([]string, 0, len(params))
	for _, p := range params {
		column := sanitizeColumn(p.Name)
		field := valueFieldForType(p.Type)

		var expr string
		switch taxonomy.NormalizeScope(string(p.Scope)) {
		case taxonomy.ScopeItem:
			expr = fmt.Sprintf(`ARRAY(
    SELECT value.%s
    FROM UNNEST(items) as item,
    UNNEST(item.item_params)
    WHERE key = '%s'
  )[SAFE_OFFSET(0)] as %s`, field, p.Name, column)
		case taxonomy.ScopeUser:
			expr = fmt.Sprintf("(SELECT value.%s FROM UNNEST(user_properties) WHERE key = '%s') as %s",
				field, p.Name, column)
		default:
			expr = fmt.Sprintf("(SELECT value.%s FROM UNNEST(event_params) WHERE key = '%s') as %s",
				field, p.Name, column)
		}
		exprs = append(exprs, expr)
	}
	return exprs
}

// GroupByColumns echoes the extraction aliases, one per parameter in the
// same order. Templates that use both rely on this 1:1 positional
// correspondence.
func GroupByColumns(params []taxonomy.Parameter) []string {
	columns := make([]string, 0, len(params))
	for _, p := range params {
		columns = append(columns, sanitizeColumn(p.Name))
	}
	return columns
}

// extractionFragment joins expressions the way template bodies expect:
// comma-separated, indented continuation lines.
func extractionFragment(params []taxonomy.Parameter) string {
	return strings.Join(ExtractionExprs(params), ",\n  ")
}

// groupByFragment is the group-by suffix appended after the template's own
// grouping columns: ", col1, col2".
func groupByFragment(params []taxonomy.Parameter) string {
	var b strings.Builder
	for _, column := range GroupByColumns(params) {
		b.WriteString(", ")
		b.WriteString(column)
	}
	return b.String()
}
