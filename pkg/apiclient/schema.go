package apiclient

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const responseValidationFailed = "Response validation failed"

// Schema validates a decoded response document. Documents are produced by
// jsonschema.UnmarshalJSON, so numbers arrive as json.Number.
type Schema interface {
	Validate(doc any) error
}

// SchemaFunc adapts a plain function to Schema.
type SchemaFunc func(doc any) error

func (f SchemaFunc) Validate(doc any) error { return f(doc) }

// JSONSchema is a compiled JSON Schema document.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type JSONSchema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles raw JSON Schema bytes. name only identifies the
// schema in errors and resource locations.
func CompileSchema(name string, raw []byte) (*JSONSchema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
	}

	loc := "https://hubclient.local/schemas/" + url.PathEscape(name) + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}

	compiled, err := compiler.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &JSONSchema{name: name, schema: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schema variables.
func MustCompileSchema(name string, raw []byte) *JSONSchema {
	s, err := CompileSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name given at compile time.
func (s *JSONSchema) Name() string { return s.name }

// Validate checks doc against the schema.
func (s *JSONSchema) Validate(doc any) error {
	return s.schema.Validate(doc)
}

// validateBody decodes body and runs it through schema. It never touches the
// caller's output value.
func validateBody(body []byte, schema Schema) error {
	var doc any
	if len(bytes.TrimSpace(body)) > 0 {
		decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
		if err != nil {
			return &ValidationError{Message: responseValidationFailed, Detail: fmt.Errorf("decode response body: %w", err)}
		}
		doc = decoded
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Message: responseValidationFailed, Detail: err}
	}
	return nil
}
