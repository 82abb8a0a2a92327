package sqlgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func compileForTest(t *testing.T, body string) *CompiledTemplate {
	t.Helper()
	segments, err := compileBody(body)
	require.NoError(t, err)
	return &CompiledTemplate{key: "test", segments: segments}
}

func TestTemplateRender_Placeholders(t *testing.T) {
	ct := compileForTest(t, "SELECT * FROM `{{project_id}}.{{dataset_id}}.events_*`")

	sql, unfilled := ct.render(Params{
		"project_id": String("p"),
		"dataset_id": String("d"),
	})
	require.Equal(t, "SELECT * FROM `p.d.events_*`", sql)
	require.Empty(t, unfilled)
}

func TestTemplateRender_MissingPlaceholderIsSilent(t *testing.T) {
	ct := compileForTest(t, "a={{a}} b={{b}}")

	sql, unfilled := ct.render(Params{"a": String("1")})
	require.Equal(t, "a=1 b=", sql)
	require.Equal(t, []string{"b"}, unfilled)
}

func TestTemplateRender_Conditionals(t *testing.T) {
	ct := compileForTest(t, "WHERE 1=1 {{#if event_list}}AND event_name IN ({{event_list}}){{/if}}")

	sql, _ := ct.render(Params{"event_list": String("'a', 'b'")})
	require.Equal(t, "WHERE 1=1 AND event_name IN ('a', 'b')", sql)

	sql, unfilled := ct.render(Params{})
	require.Equal(t, "WHERE 1=1 ", sql)
	require.Empty(t, unfilled)

	// Present but empty value is falsy.
	sql, _ = ct.render(Params{"event_list": String("")})
	require.Equal(t, "WHERE 1=1 ", sql)

	// Empty list is falsy too.
	sql, _ = ct.render(Params{"event_list": List()})
	require.Equal(t, "WHERE 1=1 ", sql)
}

func TestTemplateRender_NestedConditionals(t *testing.T) {
	ct := compileForTest(t, "{{#if a}}A{{#if b}}B{{/if}}{{/if}}")

	sql, _ := ct.render(Params{"a": String("x"), "b": String("y")})
	require.Equal(t, "AB", sql)

	sql, _ = ct.render(Params{"a": String("x")})
	require.Equal(t, "A", sql)

	sql, _ = ct.render(Params{"b": String("y")})
	require.Equal(t, "", sql)
}

func TestCompileBody_MalformedTags(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unterminated placeholder", "SELECT {{project_id"},
		{"missing endif", "{{#if a}}never closed"},
		{"stray endif", "closed {{/if}} never opened"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileBody(tc.body)
			require.Error(t, err)
		})
	}
}

func TestReferencedNames(t *testing.T) {
	segments, err := compileBody("{{a}} {{#if b}}{{c}} {{a}}{{/if}}")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, referencedNames(segments))
}

func TestValueJSON(t *testing.T) {
	var p Params
	err := json.Unmarshal([]byte(`{"project_id":"p","event_list":["a","b"]}`), &p)
	require.NoError(t, err)
	require.Equal(t, "p", p["project_id"].Str())
	require.True(t, p["event_list"].IsList())
	require.Equal(t, []string{"a", "b"}, p["event_list"].Items())

	err = json.Unmarshal([]byte(`{"n":42}`), &p)
	require.Error(t, err)

	out, err := json.Marshal(Params{"a": String("x"), "b": List("y")})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"x","b":["y"]}`, string(out))
}
