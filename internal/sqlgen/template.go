package sqlgen

import (
	"fmt"
	"sort"
	"strings"
)

// Template is a named SQL skeleton. Body placeholders use "{{name}}";
// conditional blocks use "{{#if name}}...{{/if}}" and evaluate truthily on
// the presence of a non-empty value. Parameters is the declared parameter
// list, used for load-time body validation and request validation.
type Template struct {
	Key         string   `json:"key" yaml:"key"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Body        string   `json:"template" yaml:"template"`
	Parameters  []string `json:"parameters" yaml:"parameters"`
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
	ifPrefix   = "#if "
	endIfTag   = "{{/if}}"
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segPlaceholder
	segConditional
)

// segment is one compiled piece of a template body. For segLiteral only
// text is set; for segPlaceholder only name; for segConditional name plus
// the inner segment list.
type segment struct {
	kind  segmentKind
	text  string
	name  string
	inner []segment
}

// CompiledTemplate is the cached render-ready form of a template body.
type CompiledTemplate struct {
	key      string
	segments []segment
}

// compileBody parses a template body into a segment list. Conditionals may
// nest. Malformed tags are rejected here, at load time, rather than
// surfacing later as broken SQL.
func compileBody(body string) ([]segment, error) {
	segments, rest, err := compileUntil(body, false)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("%s without matching conditional", endIfTag)
	}
	return segments, nil
}

// compileUntil consumes segments until an {{/if}} terminator (when
// terminated is true) or end of input, returning the unconsumed remainder.
func compileUntil(body string, terminated bool) ([]segment, string, error) {
	segments := []segment{}
	for body != "" {
		if strings.HasPrefix(body, endIfTag) {
			if terminated {
				return segments, body[len(endIfTag):], nil
			}
			// Stray {{/if}}; report via remainder.
			return segments, body, nil
		}

		open := strings.Index(body, openDelim)
		if open == -1 {
			segments = append(segments, segment{kind: segLiteral, text: body})
			body = ""
			continue
		}
		if open > 0 {
			segments = append(segments, segment{kind: segLiteral, text: body[:open]})
			body = body[open:]
			continue
		}

		closing := strings.Index(body, closeDelim)
		if closing == -1 {
			return nil, "", fmt.Errorf("unterminated %q tag", openDelim)
		}
		tag := body[len(openDelim):closing]
		body = body[closing+len(closeDelim):]

		if strings.HasPrefix(tag, ifPrefix) {
			name := strings.TrimSpace(strings.TrimPrefix(tag, ifPrefix))
			inner, rest, err := compileUntil(body, true)
			if err != nil {
				return nil, "", err
			}
			segments = append(segments, segment{kind: segConditional, name: name, inner: inner})
			body = rest
			continue
		}

		segments = append(segments, segment{kind: segPlaceholder, name: strings.TrimSpace(tag)})
	}

	if terminated {
		return nil, "", fmt.Errorf("conditional block missing %s", endIfTag)
	}
	return segments, "", nil
}

// render substitutes parameters into the compiled body. Placeholders with no
// usable value render as empty text and are reported in the second return so
// callers can surface a partial fill instead of treating it as a failure.
func (c *CompiledTemplate) render(params Params) (string, []string) {
	var b strings.Builder
	missing := map[string]bool{}
	renderSegments(&b, c.segments, params, missing)

	var unfilled []string
	for name := range missing {
		unfilled = append(unfilled, name)
	}
	sort.Strings(unfilled)
	return b.String(), unfilled
}

func renderSegments(b *strings.Builder, segments []segment, params Params, missing map[string]bool) {
	for _, seg := range segments {
		switch seg.kind {
		case segLiteral:
			b.WriteString(seg.text)
		case segPlaceholder:
			v, ok := params[seg.name]
			if !ok || v.IsZero() {
				missing[seg.name] = true
				continue
			}
			b.WriteString(v.text())
		case segConditional:
			if v, ok := params[seg.name]; ok && !v.IsZero() {
				renderSegments(b, seg.inner, params, missing)
			}
		}
	}
}

// referencedNames collects every placeholder and conditional name in a
// compiled body, deduplicated and sorted.
func referencedNames(segments []segment) []string {
	seen := map[string]bool{}
	var walk func([]segment)
	walk = func(segs []segment) {
		for _, seg := range segs {
			switch seg.kind {
			case segPlaceholder:
				seen[seg.name] = true
			case segConditional:
				seen[seg.name] = true
				walk(seg.inner)
			}
		}
	}
	walk(segments)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
