// Package secretref parses compact references to entries in a remote secret
// store.
//
// A reference is either a bare store key, which selects the whole remote
// entry, or a key and a property separated by a single slash, which selects
// one field of the entry:
//
//	api-key          -> {StoreKey: "api-key"}
//	team/api-key     -> {StoreKey: "team", Property: "api-key"}
package secretref

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits the store key from the property.
const Separator = "/"

// ErrMalformedReference indicates a reference with more than one separator.
var ErrMalformedReference = errors.New("malformed secret reference")

// Reference points at a remote secret store entry, optionally narrowed to a
// single property.
type Reference struct {
	StoreKey    string
	Property    string
	HasProperty bool
}

// Parse parses a compact secret reference. The empty string is a valid
// store key without property; callers reject empty keys where needed.
func Parse(raw string) (Reference, error) {
	switch n := strings.Count(raw, Separator); n {
	case 0:
		return Reference{StoreKey: raw}, nil
	case 1:
		key, property, _ := strings.Cut(raw, Separator)
		return Reference{StoreKey: key, Property: property, HasProperty: true}, nil
	default:
		return Reference{}, fmt.Errorf("%w: %q has %d separators, expected at most one", ErrMalformedReference, raw, n)
	}
}

// String returns the compact form of r.
func (r Reference) String() string {
	if !r.HasProperty {
		return r.StoreKey
	}
	return r.StoreKey + Separator + r.Property
}
