// Package mac describes the keyed message-authentication constructions the
// harness knows how to measure.
package mac

import (
	"errors"
	"fmt"
	"hash"
)

// Context is the per-computation state of a MAC. A Context is used for a
// single message and then dropped.
type Context interface {
	Update(p []byte)
	Finalize() []byte
}

// Factory builds a ready-to-use Context from a key.
type Factory func(key []byte) (Context, error)

// Descriptor identifies a MAC construction and knows how to instantiate it.
type Descriptor struct {
	ID          string
	Family      string
	Description string
	TagSize     int
	// KeySize is the exact key length the construction requires, or 0 if
	// it accepts keys of arbitrary length.
	KeySize   int
	Construct Factory
}

// ConstructionError reports that a Context could not be built from a key.
type ConstructionError struct {
	Algorithm string
	KeyLen    int
	Err       error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s with %d-byte key: %v",
		e.Algorithm, e.KeyLen, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// ErrKeySize is returned when a fixed-key construction is given a key of
// the wrong length.
var ErrKeySize = errors.New("invalid key size")

// New builds a Context for key, wrapping every failure in a
// *ConstructionError.
func (d Descriptor) New(key []byte) (Context, error) {
	if d.KeySize > 0 && len(key) != d.KeySize {
		return nil, &ConstructionError{
			Algorithm: d.ID,
			KeyLen:    len(key),
			Err:       fmt.Errorf("%w: want %d bytes", ErrKeySize, d.KeySize),
		}
	}

	ctx, err := d.Construct(key)
	if err != nil {
		return nil, &ConstructionError{
			Algorithm: d.ID,
			KeyLen:    len(key),
			Err:       err,
		}
	}

	return ctx, nil
}

// PreferredKeySize is the key length used when a run does not pin a key.
func (d Descriptor) PreferredKeySize() int {
	if d.KeySize > 0 {
		return d.KeySize
	}

	return DefaultKeySize
}

// DefaultKeySize is the key length handed to arbitrary-key constructions.
const DefaultKeySize = 32

func (d Descriptor) validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidDescriptor)
	case d.Construct == nil:
		return fmt.Errorf("%w: %s has no factory", ErrInvalidDescriptor, d.ID)
	case d.TagSize <= 0:
		return fmt.Errorf("%w: %s tag size %d",
			ErrInvalidDescriptor, d.ID, d.TagSize)
	case d.KeySize < 0:
		return fmt.Errorf("%w: %s key size %d",
			ErrInvalidDescriptor, d.ID, d.KeySize)
	}

	return nil
}

// hashContext adapts a keyed hash.Hash to Context.
type hashContext struct {
	h hash.Hash
}

func (c hashContext) Update(p []byte) {
	_, _ = c.h.Write(p)
}

func (c hashContext) Finalize() []byte {
	return c.h.Sum(nil)
}

// FromHash wraps h as a Context.
func FromHash(h hash.Hash) Context {
	return hashContext{h: h}
}
