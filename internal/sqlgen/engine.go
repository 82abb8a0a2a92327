package sqlgen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/taxolab/taxoquery/internal/taxonomy"
)

// Reserved parameter names the engine fills or canonicalizes itself.
const (
	ParamProjectID         = "project_id"
	ParamDatasetID         = "dataset_id"
	ParamStartDate         = "start_date"
	ParamEndDate           = "end_date"
	ParamEventList         = "event_list"
	ParamEventName         = "event_name"
	ParamExtractions       = "parameter_extractions"
	ParamGroupBy           = "parameter_group_by"
	ParamCustomExtractions = "custom_parameter_extractions"
	ParamCustomGroupBy     = "custom_parameter_group_by"
)

// derivedParameter reports whether a declared parameter name is filled by
// the engine (or optional by convention) rather than required from callers.
func derivedParameter(name string) bool {
	return strings.HasPrefix(name, "custom_") ||
		strings.Contains(name, "_list") ||
		strings.Contains(name, "_extractions") ||
		strings.Contains(name, "_group_by")
}

// Engine renders registry templates against caller parameters and an
// optional taxonomy. Compiled templates are cached for the process
// lifetime; the cache is append-only and idempotent per key, so concurrent
// compilation of the same key only risks redundant work.
type Engine struct {
	registry *Registry

	mu       sync.RWMutex
	compiled map[string]*CompiledTemplate
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		compiled: make(map[string]*CompiledTemplate),
	}
}

// Result is a finished render. Unfilled lists placeholders that had no
// value and rendered empty: a documented partial fill, not an error.
type Result struct {
	SQL      string   `json:"sql"`
	Unfilled []string `json:"unfilled,omitempty"`
}

// Compile returns the cached compiled form of a template, compiling on
// first use.
func (e *Engine) Compile(key string) (*CompiledTemplate, error) {
	e.mu.RLock()
	ct, ok := e.compiled[key]
	e.mu.RUnlock()
	if ok {
		return ct, nil
	}

	tmpl, err := e.registry.Get(key)
	if err != nil {
		return nil, err
	}
	segments, err := compileBody(tmpl.Body)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", key, err)
	}
	ct = &CompiledTemplate{key: key, segments: segments}

	e.mu.Lock()
	e.compiled[key] = ct
	e.mu.Unlock()
	return ct, nil
}

// Render produces the final SQL text for a template key. The caller's
// parameter map is never mutated: canonicalization happens on a copy.
//
// Resolution order: taxonomy-derived extraction fragments (when event_name
// and a taxonomy are supplied), event_list quoting, date compaction, then
// template substitution. Rendering is deterministic and never fails on
// missing parameters; use ValidateParameters for that.
func (e *Engine) Render(key string, params Params, tax *taxonomy.Taxonomy) (Result, error) {
	ct, err := e.Compile(key)
	if err != nil {
		return Result{}, err
	}

	resolved := params.clone()
	resolveEventFragments(resolved, tax)
	resolveEventList(resolved)
	resolveDates(resolved)

	sql, unfilled := ct.render(resolved)
	return Result{SQL: sql, Unfilled: unfilled}, nil
}

// resolveEventFragments fills the extraction and group-by slots from the
// named event's parameter list. Both the generic and the "custom" slot
// names are assigned so either template convention resolves. Event lookup
// is first-match; duplicate event names are never merged.
func resolveEventFragments(params Params, tax *taxonomy.Taxonomy) {
	if tax == nil {
		return
	}
	name := params[ParamEventName].Str()
	if name == "" {
		return
	}
	event := tax.EventByName(name)
	if event == nil || len(event.Parameters) == 0 {
		return
	}

	extractions := String(extractionFragment(event.Parameters))
	groupBy := String(groupByFragment(event.Parameters))
	params[ParamExtractions] = extractions
	params[ParamGroupBy] = groupBy
	params[ParamCustomExtractions] = extractions
	params[ParamCustomGroupBy] = groupBy
}

// resolveEventList rewrites a list-valued event_list into the single-quoted
// comma form an IN (...) clause expects.
func resolveEventList(params Params) {
	v, ok := params[ParamEventList]
	if !ok || !v.IsList() {
		return
	}
	params[ParamEventList] = String(FormatEventList(v.Items()))
}

// FormatEventList renders event names as a quoted IN-clause literal list:
// 'a', 'b'. An empty input yields "".
func FormatEventList(events []string) string {
	quoted := make([]string, len(events))
	for i, e := range events {
		quoted[i] = "'" + e + "'"
	}
	return strings.Join(quoted, ", ")
}

// resolveDates compacts start_date/end_date from YYYY-MM-DD to the YYYYMMDD
// digit form used in _TABLE_SUFFIX range predicates.
func resolveDates(params Params) {
	for _, key := range []string{ParamStartDate, ParamEndDate} {
		if v, ok := params[key]; ok && !v.IsList() {
			params[key] = String(CompactDate(v.Str()))
		}
	}
}

// CompactDate strips the dashes from a YYYY-MM-DD date.
func CompactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}

// ValidateParameters checks that every required parameter is present and
// non-empty. Required means declared minus the derived conventions
// (custom_* and names containing _list, _extractions or _group_by).
// Returns a MissingParametersError naming every absent parameter.
func (e *Engine) ValidateParameters(key string, params Params) error {
	tmpl, err := e.registry.Get(key)
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range tmpl.Parameters {
		if derivedParameter(name) {
			continue
		}
		if v, ok := params[name]; !ok || v.IsZero() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParametersError{TemplateKey: key, Missing: missing}
	}
	return nil
}

// GenerateCustomSQL assembles a fixed-shape analysis query for a single
// event directly, without going through the registry. Used when no
// predefined template fits a custom event.
func GenerateCustomSQL(event *taxonomy.Event, params Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s event analysis\n", event.EventName)
	b.WriteString("SELECT\n")
	b.WriteString("  DATE(TIMESTAMP_MICROS(event_timestamp)) as event_date,\n")
	b.WriteString("  event_name,\n")

	if len(event.Parameters) > 0 {
		fmt.Fprintf(&b, "  %s\n", extractionFragment(event.Parameters))
	}

	b.WriteString("  COUNT(*) as event_count,\n")
	b.WriteString("  COUNT(DISTINCT user_pseudo_id) as unique_users\n")
	fmt.Fprintf(&b, "FROM `%s.%s.events_*`\n",
		params[ParamProjectID].Str(), params[ParamDatasetID].Str())
	fmt.Fprintf(&b, "WHERE _TABLE_SUFFIX BETWEEN '%s' AND '%s'\n",
		CompactDate(params[ParamStartDate].Str()), CompactDate(params[ParamEndDate].Str()))
	fmt.Fprintf(&b, "  AND event_name = '%s'\n", event.EventName)
	b.WriteString("GROUP BY event_date, event_name")

	if len(event.Parameters) > 0 {
		b.WriteString(groupByFragment(event.Parameters))
	}

	b.WriteString("\nORDER BY event_date DESC, event_count DESC\n")
	b.WriteString("LIMIT 1000")
	return b.String()
}
