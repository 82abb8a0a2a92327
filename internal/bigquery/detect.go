package bigquery

import "strings"

// EventTablePattern is the wildcard covering the daily sharded export
// tables.
const EventTablePattern = "events_*"

// EventTableDetection reports whether a dataset holds a GA4 export and
// which physical tables belong to it.
type EventTableDetection struct {
	HasEventData bool     `json:"has_event_data"`
	Tables       []string `json:"tables"`
	TablePattern string   `json:"table_pattern,omitempty"`
}

// DetectEventTables filters table IDs down to the daily export shards
// (events_YYYYMMDD, the intraday variant, or a plain events table) and
// reports the wildcard pattern to query them with.
func DetectEventTables(tableIDs []string) EventTableDetection {
	var matched []string
	for _, id := range tableIDs {
		if strings.HasPrefix(id, "events_") ||
			strings.HasPrefix(id, "events_intraday_") ||
			id == "events" {
			matched = append(matched, id)
		}
	}

	detection := EventTableDetection{
		HasEventData: len(matched) > 0,
		Tables:       matched,
	}
	if detection.HasEventData {
		detection.TablePattern = EventTablePattern
	}
	return detection
}
