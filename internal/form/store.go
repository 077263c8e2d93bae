// internal/form/store.go
//
// Barali – Forms subsystem: per-instance field state.
//
// Context
//   A mounted form owns one Store.  The Store holds the live value of every
//   declared field (Values) and the current per-field validation failures
//   (FieldErrors).  Callers mutate it one field at a time through SetField,
//   replace the error set wholesale through SetErrors, and read copies via
//   Values and Errors.  The Store carries no business rules beyond one: a
//   field marked clear-on-edit drops its own error as soon as it is edited.
//
// Notes
//   •  Every declared key is always present in Values; fields are empty, never
//      absent.
//   •  All methods are safe for concurrent use.  The HTTP layer may reach one
//      instance from overlapping requests.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownField is returned when a caller names a field the Store was not
// built with.
var ErrUnknownField = errors.New("unknown form field")

// Values maps field name → current value.  See Store for the invariant that
// every declared key is present.
type Values map[string]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// FieldErrors maps field name → user-facing message.  A key is present only
// while that field fails validation.
type FieldErrors map[string]string

// Has reports whether name currently carries an error.
func (e FieldErrors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Clone returns an independent copy.  A nil receiver yields an empty map.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, m := range e {
		out[k] = m
	}
	return out
}

// Fields returns the failing field names in sorted order.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithClearOnEdit marks fields whose error is dropped when the field is
// edited.  Re-validation is deferred to the next submit.
func WithClearOnEdit(names ...string) StoreOption {
	return func(s *Store) {
		for _, n := range names {
			s.clearOnEdit[n] = struct{}{}
		}
	}
}

// Store is the explicit state struct behind one mounted form.
type Store struct {
	mu          sync.RWMutex
	names       []string
	values      Values
	errs        FieldErrors
	clearOnEdit map[string]struct{}
}

// NewStore returns a Store with every name set to "".
func NewStore(names []string, opts ...StoreOption) *Store {
	s := &Store{
		names:       append([]string(nil), names...),
		values:      make(Values, len(names)),
		errs:        FieldErrors{},
		clearOnEdit: map[string]struct{}{},
	}
	for _, n := range names {
		s.values[n] = ""
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewStoreFor builds a Store from a form definition, honouring each field's
// clear_on_edit flag.
func NewStoreFor(fd *FormDef, opts ...StoreOption) *Store {
	fields := flattenFields(fd)
	names := make([]string, 0, len(fields))
	var clear []string
	for _, f := range fields {
		names = append(names, f.Name)
		if f.ClearOnEdit {
			clear = append(clear, f.Name)
		}
	}
	return NewStore(names, append([]StoreOption{WithClearOnEdit(clear...)}, opts...)...)
}

// Names returns the declared field names in declaration order.
func (s *Store) Names() []string { return append([]string(nil), s.names...) }

// SetField replaces exactly one value.  All other entries are unchanged.
func (s *Store) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.values[name] = value

	if _, ok := s.clearOnEdit[name]; ok {
		delete(s.errs, name)
	}
	return nil
}

// Values returns a snapshot of the current field values.
func (s *Store) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Value returns the current value of one field ("" when unknown).
func (s *Store) Value(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Errors returns a snapshot of the current field errors.
func (s *Store) Errors() FieldErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs.Clone()
}

// SetErrors replaces the whole error set.  nil clears it.
func (s *Store) SetErrors(errs FieldErrors) {
	s.mu.Lock()
	s.errs = errs.Clone()
	s.mu.Unlock()
}

// SetFieldError records one error without touching the others.
func (s *Store) SetFieldError(name, msg string) {
	s.mu.Lock()
	s.errs[name] = msg
	s.mu.Unlock()
}
