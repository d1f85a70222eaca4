package mac

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateAlgorithm = errors.New("duplicate algorithm id")
	ErrUnknownAlgorithm   = errors.New("unknown algorithm")
	ErrInvalidDescriptor  = errors.New("invalid descriptor")
)

// Registry maps algorithm ids to descriptors. It is filled once at startup
// and only read afterwards, so it carries no lock.
type Registry struct {
	byID  map[string]Descriptor
	order []string
}

// NewRegistry returns a Registry holding descs in the given order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byID: make(map[string]Descriptor, len(descs))}

	for _, d := range descs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends d to the registry.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAlgorithm, d.ID)
	}

	r.byID[d.ID] = d
	r.order = append(r.order, d.ID)

	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// All returns every descriptor in registration order.
func (r *Registry) All() []Descriptor {
	descs := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		descs = append(descs, r.byID[id])
	}

	return descs
}

// Select resolves ids to descriptors, preserving the order of ids. An
// empty selection returns every registered descriptor. Repeated ids are a
// configuration error.
func (r *Registry) Select(ids []string) ([]Descriptor, error) {
	if len(ids) == 0 {
		return r.All(), nil
	}

	seen := make(map[string]struct{}, len(ids))
	descs := make([]Descriptor, 0, len(ids))

	for _, id := range ids {
		d, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
		}

		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s selected twice",
				ErrDuplicateAlgorithm, id)
		}

		seen[id] = struct{}{}
		descs = append(descs, d)
	}

	return descs, nil
}

var defaultRegistry = mustRegistry(Builtins()...)

// Default returns the process-wide registry of builtin constructions.
func Default() *Registry {
	return defaultRegistry
}

func mustRegistry(descs ...Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}

	return r
}
