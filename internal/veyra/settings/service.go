package settings

import (
	"context"
	"fmt"
)

// Service enforces the closed namespace set on writes; reads pass straight
// through since an unknown-namespace read is simply a not-found lookup.
type Service struct {
	store  Store
	Schema *SchemaRegistry // optional — validates TypeJSON payloads on Put
}

// New builds a Service over store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Get returns the coerced value for (namespace, key).
func (s *Service) Get(ctx context.Context, namespace, key string) (any, error) {
	setting, err := s.store.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	return Coerce(setting), nil
}

// Put rejects unknown namespaces, validates TypeJSON payloads against any
// registered schema, then upserts the raw setting row.
func (s *Service) Put(ctx context.Context, setting Setting) error {
	if !IsKnownNamespace(setting.Namespace) {
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, setting.Namespace)
	}
	if s.Schema != nil && setting.DataType == TypeJSON {
		if err := s.Schema.Validate(setting.Namespace, setting.Key, setting.Value); err != nil {
			return err
		}
	}
	return s.store.Put(ctx, setting)
}

// Delete removes a setting; deleting an unknown namespace's key is a no-op
// (there is nothing to reject — there is nothing there).
func (s *Service) Delete(ctx context.Context, namespace, key string) error {
	return s.store.Delete(ctx, namespace, key)
}

// List returns every setting in namespace, coerced.
func (s *Service) List(ctx context.Context, namespace string) (map[string]any, error) {
	settings, err := s.store.List(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(settings))
	for _, st := range settings {
		out[st.Key] = Coerce(st)
	}
	return out, nil
}
