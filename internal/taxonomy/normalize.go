package taxonomy

import "strings"

var dataTypeSynonyms = map[string]DataType{
	"string":    TypeString,
	"number":    TypeNumeric,
	"int":       TypeInt64,
	"integer":   TypeInt64,
	"int64":     TypeInt64,
	"float":     TypeFloat64,
	"double":    TypeFloat64,
	"float64":   TypeFloat64,
	"numeric":   TypeNumeric,
	"boolean":   TypeBool,
	"bool":      TypeBool,
	"date":      TypeDate,
	"timestamp": TypeTimestamp,
}

// NormalizeDataType maps a free-text type cell to a DataType. Matching is
// case-insensitive; anything unrecognized (including "") is STRING. Total
// and idempotent: normalized values map to themselves.
func NormalizeDataType(raw string) DataType {
	if t, ok := dataTypeSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return TypeString
}

// NormalizeScope maps a free-text scope cell to a Scope by substring:
// anything containing "item" is Item, anything containing "user" is User,
// everything else (including "") is Event.
func NormalizeScope(raw string) Scope {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "item"):
		return ScopeItem
	case strings.Contains(s, "user"):
		return ScopeUser
	default:
		return ScopeEvent
	}
}

// Canonical project-info keys and the substrings that trigger them.
// Order matters: the first canonical key whose trigger matches wins.
var projectKeyTriggers = []struct {
	canonical string
	triggers  []string
}{
	{"ga4_property_id", []string{"ga4", "property", "measurement"}},
	{"gtm_container_id", []string{"gtm", "container", "tag"}},
	{"bigquery_project", []string{"bigquery", "bq", "project"}},
	{"dataset_id", []string{"dataset", "table"}},
	{"stream_name", []string{"stream", "datastream"}},
}

// normalizeProjectKey maps a free-text info-sheet key to a canonical key.
// Keys matching no trigger fall back to a lowercase slug of the raw key.
func normalizeProjectKey(raw string) string {
	lower := strings.ToLower(raw)
	for _, entry := range projectKeyTriggers {
		for _, trigger := range entry.triggers {
			if strings.Contains(lower, trigger) {
				return entry.canonical
			}
		}
	}
	return strings.Join(strings.Fields(lower), "_")
}
