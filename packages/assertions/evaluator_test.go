package assertions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createResponse(statusCode uint16, body string, headers ...http.Header) *http.Response {
	if len(headers) == 0 {
		headers = []http.Header{{Name: "Content-Type", Value: "application/json"}}
	}
	return &http.Response{
		Version:    "HTTP/1.1",
		StatusCode: statusCode,
		Reason:     "OK",
		Headers:    headers,
		Body:       body,
	}
}

func mustExpect(t *testing.T, s string) *Expectation {
	t.Helper()
	exp, err := ParseExpectation(s)
	require.NoError(t, err)
	return exp
}

func TestParseExpectation(t *testing.T) {
	tests := []struct {
		input    string
		subject  string
		op       Operator
		expected string
	}{
		{"status == 200", "status", OpEquals, "200"},
		{"  status != 500  ", "status", OpNotEquals, "500"},
		{"header.Content-Type contains json", "header.Content-Type", OpContains, "json"},
		{"body.user.name == John Smith", "body.user.name", OpEquals, "John Smith"},
		{"body[0].id == 1", "body[0].id", OpEquals, "1"},
		{"body.token exists", "body.token", OpExists, ""},
		{"body contains hello", "body", OpContains, "hello"},
		{"body.expr == a == b", "body.expr", OpEquals, "a == b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			exp, err := ParseExpectation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, exp.Subject)
			assert.Equal(t, tt.op, exp.Operator)
			assert.Equal(t, tt.expected, exp.Expected)
		})
	}
}

func TestParseExpectation_Invalid(t *testing.T) {
	for _, input := range []string{"", "status", "status=200", "foo == 1", "header. == x", "bodyx == 1", "== 200"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseExpectation(input)
			assert.Error(t, err)
		})
	}
}

func TestEvaluator_Status(t *testing.T) {
	e := NewEvaluator(createResponse(200, `{}`))

	r := e.Evaluate(mustExpect(t, "status == 200"))
	assert.True(t, r.Passed)
	assert.Equal(t, 200, r.Actual)

	r = e.Evaluate(mustExpect(t, "status != 200"))
	assert.False(t, r.Passed)
}

func TestEvaluator_Header(t *testing.T) {
	resp := createResponse(200, "plain",
		http.Header{Name: "Content-Type", Value: "text/plain"},
		http.Header{Name: "X-Trace", Value: "first"},
		http.Header{Name: "x-trace", Value: "second"},
	)
	e := NewEvaluator(resp)

	assert.True(t, e.Evaluate(mustExpect(t, "header.content-type == text/plain")).Passed)
	assert.True(t, e.Evaluate(mustExpect(t, "header.X-Trace == first")).Passed)
	assert.True(t, e.Evaluate(mustExpect(t, "header.X-Trace exists")).Passed)

	r := e.Evaluate(mustExpect(t, "header.X-Missing == x"))
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "does not exist")

	assert.True(t, e.Evaluate(mustExpect(t, "header.X-Missing != x")).Passed)
	assert.False(t, e.Evaluate(mustExpect(t, "header.X-Missing exists")).Passed)
}

func TestEvaluator_BodyJSONPath(t *testing.T) {
	resp := createResponse(200, `{"user": {"name": "John", "age": 30, "admin": false}, "items": [{"id": 1}, {"id": 2}]}`)
	e := NewEvaluator(resp)

	tests := []struct {
		expectation string
		passed      bool
	}{
		{"body.user.name == John", true},
		{"body.user.age == 30", true},
		{"body.user.admin == false", true},
		{"body.items[1].id == 2", true},
		{"body.items.#.id contains 2", true},
		{"body.user.name contains oh", true},
		{"body.user.name == Jane", false},
		{"body.user.email exists", false},
		{"body.user exists", true},
	}

	for _, tt := range tests {
		t.Run(tt.expectation, func(t *testing.T) {
			r := e.Evaluate(mustExpect(t, tt.expectation))
			assert.Equal(t, tt.passed, r.Passed, "actual: %v", r.Actual)
		})
	}
}

func TestEvaluator_JSONDetectedWithoutContentType(t *testing.T) {
	resp := createResponse(200, `{"ok": true}`, http.Header{Name: "Content-Type", Value: "text/plain"})
	e := NewEvaluator(resp)

	v, ok := e.Query("ok")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestEvaluator_PlainBody(t *testing.T) {
	resp := createResponse(200, "<html>hello</html>", http.Header{Name: "Content-Type", Value: "text/html"})
	e := NewEvaluator(resp)

	assert.True(t, e.Evaluate(mustExpect(t, "body contains hello")).Passed)
	assert.True(t, e.Evaluate(mustExpect(t, "body == <html>hello</html>")).Passed)
	assert.False(t, e.Evaluate(mustExpect(t, "body.title exists")).Passed)

	_, ok := e.Query("title")
	assert.False(t, ok)
}

func TestEvaluator_Query(t *testing.T) {
	e := NewEvaluator(createResponse(200, `[{"tags": ["a", "b"]}]`))

	v, ok := e.Query("[0].tags[1]")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	raw, ok := e.QueryRaw(".[0].tags")
	require.True(t, ok)
	assert.Equal(t, `["a", "b"]`, raw)

	raw, ok = e.QueryRaw("")
	require.True(t, ok)
	assert.Equal(t, `[{"tags": ["a", "b"]}]`, raw)

	_, ok = e.QueryRaw("[3]")
	assert.False(t, ok)
}

func TestEvaluator_EvaluateAll(t *testing.T) {
	e := NewEvaluator(createResponse(201, `{"id": 7}`))

	results, passed := e.EvaluateAll([]*Expectation{
		mustExpect(t, "status == 201"),
		mustExpect(t, "body.id == 7"),
	})
	assert.True(t, passed)
	assert.Len(t, results, 2)

	results, passed = e.EvaluateAll([]*Expectation{
		mustExpect(t, "status == 200"),
		mustExpect(t, "body.id == 7"),
	})
	assert.False(t, passed)
	assert.False(t, results[0].Passed)
	assert.True(t, results[1].Passed)
}

func TestConvertBracketNotation(t *testing.T) {
	assert.Equal(t, "0.id", convertBracketNotation("[0].id"))
	assert.Equal(t, "items.0.tags.1", convertBracketNotation("items[0].tags[1]"))
	assert.Equal(t, "plain", convertBracketNotation("plain"))
}

func TestEvaluator_MatchSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "user.json")
	schema := `{
		"type": "object",
		"required": ["name", "age"],
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		}
	}`
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0644))

	t.Run("valid", func(t *testing.T) {
		r := NewEvaluator(createResponse(200, `{"name": "John", "age": 30}`)).MatchSchema(schemaPath)
		assert.True(t, r.Passed, r.Message)
	})

	t.Run("invalid", func(t *testing.T) {
		r := NewEvaluator(createResponse(200, `{"name": 1}`)).MatchSchema(schemaPath)
		assert.False(t, r.Passed)
		assert.Contains(t, r.Message, "schema validation failed")
	})

	t.Run("not json", func(t *testing.T) {
		r := NewEvaluator(createResponse(200, "<html/>", http.Header{Name: "Content-Type", Value: "text/html"})).MatchSchema(schemaPath)
		assert.False(t, r.Passed)
		assert.Equal(t, "response body is not JSON", r.Message)
	})

	t.Run("missing schema", func(t *testing.T) {
		r := NewEvaluator(createResponse(200, `{}`)).MatchSchema(filepath.Join(dir, "missing.json"))
		assert.False(t, r.Passed)
		assert.Contains(t, r.Message, "failed to read schema file")
	})
}
