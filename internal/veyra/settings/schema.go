package settings

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaRegistry compiles and holds JSON Schemas for namespace/key pairs
// whose data_type is TypeJSON, so a malformed operator-supplied payload is
// rejected at write time instead of silently coercing back to the raw
// string later — mirrors the teacher corpus's own firewall schema
// validation, generalized from tool-call parameters to settings payloads.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema // "namespace/key" -> compiled schema
}

// NewSchemaRegistry builds an empty registry. Call RegisterSchema to add
// validation for specific namespace/key pairs; pairs with no registered
// schema are never validated.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]*jsonschema.Schema)}
}

// RegisterSchema compiles rawSchema (a JSON Schema document) and attaches it
// to namespace/key. Subsequent Put calls for that pair with DataType ==
// TypeJSON are validated against it before being stored.
func (r *SchemaRegistry) RegisterSchema(namespace, key, rawSchema string) error {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://veyra.internal/settings/%s/%s.schema.json", namespace, key)
	if err := c.AddResource(url, strings.NewReader(rawSchema)); err != nil {
		return fmt.Errorf("settings: load schema for %s/%s: %w", namespace, key, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("settings: compile schema for %s/%s: %w", namespace, key, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[schemaKey(namespace, key)] = compiled
	return nil
}

// Validate checks value (the raw JSON string stored in Setting.Value)
// against the schema registered for namespace/key, if any. A pair with no
// registered schema always validates.
func (r *SchemaRegistry) Validate(namespace, key, value string) error {
	r.mu.RLock()
	schema, ok := r.schemas[schemaKey(namespace, key)]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return fmt.Errorf("settings: %s/%s: invalid json: %w", namespace, key, err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("settings: %s/%s: schema validation failed: %w", namespace, key, err)
	}
	return nil
}

func schemaKey(namespace, key string) string {
	return namespace + "/" + key
}
