package item

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed header.schema.json
var headerSchemaJSON string

const headerSchemaURL = "worklog://item-header.schema.json"

var headerSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(headerSchemaURL, strings.NewReader(headerSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add header schema: %w", err)
	}
	return compiler.Compile(headerSchemaURL)
})

// validateHeader checks a raw front-matter mapping against the header schema.
// The mapping is round-tripped through JSON so the validator sees plain JSON
// types.
func validateHeader(raw map[string]any) error {
	schema, err := headerSchema()
	if err != nil {
		return fmt.Errorf("compile header schema: %w", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return &ValidationError{Field: "header", Msg: err.Error()}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Field: "header", Msg: err.Error()}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	leaf := firstLeaf(ve)
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = "header"
	}

	verr := &ValidationError{Field: field, Msg: leaf.Message}
	if top, _, _ := strings.Cut(field, "/"); top != "" {
		if v, ok := raw[top].(string); ok {
			verr.Value = v
		}
	}
	return verr
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
