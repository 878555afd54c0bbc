package sqlbench

import (
	"errors"
	"fmt"
)

// QueryVariant is one named, interchangeable implementation of the same
// logical query. The statement is opaque to the rest of the harness;
// identity is ID.
type QueryVariant struct {
	ID          string
	DisplayName string
	Statement   string
}

var (
	ErrDuplicateVariant = errors.New("duplicate variant id")
	ErrEmptyVariantID   = errors.New("empty variant id")
)

// Registry holds the fixed set of variants under comparison, in
// registration order. Registration order is significant: it is the order
// the engine interleaves executions in. The registry must not be mutated
// once a run has started, and is not safe for concurrent use.
type Registry struct {
	variants []QueryVariant
	byID     map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]struct{}{}}
}

func (r *Registry) Register(v QueryVariant) error {
	if v.ID == "" {
		return ErrEmptyVariantID
	}

	if _, ok := r.byID[v.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariant, v.ID)
	}

	r.byID[v.ID] = struct{}{}
	r.variants = append(r.variants, v)

	return nil
}

// List returns the registered variants in registration order.
func (r *Registry) List() []QueryVariant {
	out := make([]QueryVariant, len(r.variants))
	copy(out, r.variants)

	return out
}
