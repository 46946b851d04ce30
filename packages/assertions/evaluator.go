package assertions

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

type Operator int

const (
	OpEquals Operator = iota
	OpNotEquals
	OpContains
	OpExists
)

func (o Operator) String() string {
	switch o {
	case OpEquals:
		return "=="
	case OpNotEquals:
		return "!="
	case OpContains:
		return "contains"
	case OpExists:
		return "exists"
	default:
		return "unknown"
	}
}

// Expectation is a single check against a response, written as
// "<subject> <op> [value]" where subject is status, header.<Name>, body or
// body.<path>.
type Expectation struct {
	Subject  string
	Operator Operator
	Expected string
}

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

var operators = []struct {
	token string
	op    Operator
}{
	{" == ", OpEquals},
	{" != ", OpNotEquals},
	{" contains ", OpContains},
}

// ParseExpectation parses the command line form of an expectation.
func ParseExpectation(s string) (*Expectation, error) {
	s = strings.TrimSpace(s)
	if subject, ok := strings.CutSuffix(s, " exists"); ok {
		return newExpectation(subject, OpExists, "")
	}
	for _, o := range operators {
		if subject, expected, ok := strings.Cut(s, o.token); ok {
			return newExpectation(subject, o.op, strings.TrimSpace(expected))
		}
	}
	return nil, fmt.Errorf("invalid expectation %q: expected '<subject> ==|!=|contains <value>' or '<subject> exists'", s)
}

func newExpectation(subject string, op Operator, expected string) (*Expectation, error) {
	subject = strings.TrimSpace(subject)
	switch {
	case subject == "status", subject == "body":
	case strings.HasPrefix(subject, "header.") && len(subject) > len("header."):
	case strings.HasPrefix(subject, "body.") || strings.HasPrefix(subject, "body["):
	default:
		return nil, fmt.Errorf("invalid expectation subject %q", subject)
	}
	return &Expectation{Subject: subject, Operator: op, Expected: expected}, nil
}

type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewEvaluator(resp *http.Response) *Evaluator {
	e := &Evaluator{
		response: resp,
	}
	if resp.IsJSON() || gjson.Valid(resp.Body) {
		e.bodyJSON = gjson.Parse(resp.Body)
	}
	return e
}

func (e *Evaluator) Evaluate(exp *Expectation) *Result {
	result := &Result{
		Subject:  exp.Subject,
		Operator: exp.Operator.String(),
		Expected: exp.Expected,
	}

	actual, found := e.actualValue(exp.Subject)
	result.Actual = actual

	if exp.Operator == OpExists {
		result.Expected = nil
		result.Passed = found
		if !found {
			result.Message = exp.Subject + " does not exist"
		}
		return result
	}

	if !found {
		result.Passed = exp.Operator == OpNotEquals
		if !result.Passed {
			result.Message = exp.Subject + " does not exist"
		}
		return result
	}

	text := stringify(actual)
	switch exp.Operator {
	case OpEquals:
		result.Passed = text == exp.Expected
	case OpNotEquals:
		result.Passed = text != exp.Expected
	case OpContains:
		result.Passed = strings.Contains(text, exp.Expected)
	}
	return result
}

// EvaluateAll runs every expectation and reports whether all passed.
func (e *Evaluator) EvaluateAll(exps []*Expectation) ([]*Result, bool) {
	results := make([]*Result, 0, len(exps))
	passed := true
	for _, exp := range exps {
		r := e.Evaluate(exp)
		passed = passed && r.Passed
		results = append(results, r)
	}
	return results, passed
}

func (e *Evaluator) actualValue(subject string) (any, bool) {
	switch {
	case subject == "status":
		return int(e.response.StatusCode), true
	case strings.HasPrefix(subject, "header."):
		values := e.response.Values(strings.TrimPrefix(subject, "header."))
		if len(values) == 0 {
			return nil, false
		}
		return values[0], true
	case subject == "body":
		return e.response.Body, true
	default:
		return e.Query(strings.TrimPrefix(subject, "body"))
	}
}

// Query extracts a value from a JSON body. Paths use gjson syntax and also
// accept bracket indexes: "items[0].id".
func (e *Evaluator) Query(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		return nil, false
	}
	path = convertBracketNotation(strings.TrimPrefix(path, "."))
	if path == "" {
		return e.bodyJSON.Value(), true
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// QueryRaw is like Query but returns the raw JSON text of the match.
func (e *Evaluator) QueryRaw(path string) (string, bool) {
	if !e.bodyJSON.Exists() {
		return "", false
	}
	path = convertBracketNotation(strings.TrimPrefix(path, "."))
	if path == "" {
		return e.bodyJSON.Raw, true
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return "", false
	}
	return result.Raw, true
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(result, ".")
}

// MatchSchema validates the body against the JSON schema stored at schemaPath.
func (e *Evaluator) MatchSchema(schemaPath string) *Result {
	result := &Result{
		Subject:  "body",
		Operator: "schema",
		Expected: schemaPath,
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		result.Message = fmt.Sprintf("failed to read schema file: %v", err)
		return result
	}

	if !e.bodyJSON.Exists() {
		result.Message = "response body is not JSON"
		return result
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewStringLoader(e.response.Body)

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		result.Message = fmt.Sprintf("schema validation error: %v", err)
		return result
	}

	if validation.Valid() {
		result.Passed = true
		return result
	}

	var problems []string
	for _, desc := range validation.Errors() {
		problems = append(problems, desc.String())
	}
	result.Actual = len(problems)
	result.Message = fmt.Sprintf("schema validation failed: %s", strings.Join(problems, "; "))
	return result
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
