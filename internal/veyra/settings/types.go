// Package settings is a namespaced key/value store for operator-tunable
// knobs (models, budgets, tuning, scheduler). Every value is stored as a
// plain string with a data_type tag; reads coerce the string to that type,
// falling back to the raw string when coercion fails. Writes to an unknown
// namespace are rejected — directly grounded on the teacher's
// internal/ruriko/config.Store, generalized here from one flat table to one
// partitioned by namespace.
package settings

import "time"

// DataType is the closed set of coercion targets a setting may declare.
type DataType string

const (
	TypeString DataType = "string"
	TypeInt    DataType = "int"
	TypeFloat  DataType = "float"
	TypeBool   DataType = "bool"
	TypeJSON   DataType = "json"
)

// Namespaces is the closed set of namespaces writes are accepted into.
var Namespaces = map[string]struct{}{
	"models":    {},
	"budgets":   {},
	"tuning":    {},
	"scheduler": {},
}

// IsKnownNamespace reports whether ns belongs to the closed set.
func IsKnownNamespace(ns string) bool {
	_, ok := Namespaces[ns]
	return ok
}

// Setting is one namespaced key/value row, stored raw and coerced on read.
type Setting struct {
	Namespace string
	Key       string
	Value     string
	DataType  DataType
	UpdatedAt time.Time
}
