package masterapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaProducts        = "products.json"
	schemaMovements       = "movements.json"
	schemaUnresolved      = "unresolved.json"
	schemaAnalytics       = "analytics.json"
	schemaProblemAnalysis = "problem_analysis.json"
	schemaMutation        = "mutation.json"
)

// schemaSet compiles the embedded response schemas on first use.
type schemaSet struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaSet() *schemaSet {
	return &schemaSet{compiled: make(map[string]*jsonschema.Schema)}
}

// Validate checks a raw response body against the named schema.
func (s *schemaSet) Validate(name string, body []byte) error {
	schema, err := s.schemaFor(name)
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("masterapi: decode %s payload: %w", name, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("masterapi: response failed %s validation: %w", name, err)
	}
	return nil
}

func (s *schemaSet) schemaFor(name string) (*jsonschema.Schema, error) {
	s.mu.RLock()
	schema, ok := s.compiled[name]
	s.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("masterapi: read schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("masterapi: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("masterapi: compile schema %s: %w", name, err)
	}
	s.mu.Lock()
	s.compiled[name] = compiled
	s.mu.Unlock()
	return compiled, nil
}
