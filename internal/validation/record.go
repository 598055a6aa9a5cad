package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

var (
	// ErrSchemaInvalid flags a schema that cannot be compiled.
	ErrSchemaInvalid = errors.New("schema invalid")
	// ErrRecordValidation flags a record that fails its schema.
	ErrRecordValidation = errors.New("record validation failed")
)

// Issue captures a single validation failure location.
type Issue struct {
	Location string
	Message  string
}

// RecordValidationError aggregates the issues for one rejected record.
type RecordValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *RecordValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrRecordValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *RecordValidationError) Unwrap() error {
	return ErrRecordValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var recordErr *RecordValidationError
	if errors.As(err, &recordErr) && recordErr != nil {
		return recordErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectIssues(validationErr)
	}
	return []Issue{{Message: err.Error()}}
}

// RecordValidator gates external records against a compiled JSON schema
// before they reach the transformer. The schema is compiled once at
// construction; Validate is safe for concurrent use.
type RecordValidator struct {
	compiled *jsonschema.Schema
}

// NewRecordValidator compiles the given JSON schema. A nil or empty schema
// is rejected; callers wanting no gate simply skip the validator.
func NewRecordValidator(schema map[string]any) (*RecordValidator, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: schema is empty", ErrSchemaInvalid)
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &RecordValidator{compiled: compiled}, nil
}

// Validate checks the record's payload projection against the schema.
func (v *RecordValidator) Validate(record interfaces.ExternalRecord) error {
	if err := v.compiled.Validate(recordPayload(record)); err != nil {
		return &RecordValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// recordPayload projects a record into the plain map shape schemas are
// written against. Optional fields are present only when set so "required"
// clauses behave as expected.
func recordPayload(record interfaces.ExternalRecord) map[string]any {
	payload := map[string]any{
		"page_id":       record.PageID,
		"datasource_id": record.DatasourceID,
		"slug":          record.Slug,
	}
	if record.Title != "" {
		payload["title"] = record.Title
	}
	if record.Content != nil {
		payload["content"] = *record.Content
	}
	if record.PublishAt != nil {
		payload["publish_at"] = *record.PublishAt
	}
	if len(record.Tags) > 0 {
		payload["tags"] = record.Tags
	}
	if len(record.Authors) > 0 {
		payload["authors"] = record.Authors
	}
	if len(record.Meta) > 0 {
		payload["meta"] = record.Meta
	}
	return payload
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
