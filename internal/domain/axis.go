// Package domain provides shared domain types for the qaforge pipeline.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"github.com/mrz1836/qaforge/internal/errors"
)

// Axis is a named parameter dimension with an ordered list of allowed values.
type Axis struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// Axes is an ordered mapping from axis name to its allowed values.
// The slice order is the declaration order and drives enumeration order.
type Axes []Axis

// Names returns the axis names in declaration order.
func (a Axes) Names() []string {
	names := make([]string, len(a))
	for i, axis := range a {
		names[i] = axis.Name
	}
	return names
}

// Lookup returns the values of the named axis.
func (a Axes) Lookup(name string) ([]string, bool) {
	for _, axis := range a {
		if axis.Name == name {
			return axis.Values, true
		}
	}
	return nil, false
}

// Has reports whether an axis with the given name is declared.
func (a Axes) Has(name string) bool {
	_, ok := a.Lookup(name)
	return ok
}

// Cardinalities maps each axis name to its number of values.
func (a Axes) Cardinalities() map[string]int {
	out := make(map[string]int, len(a))
	for _, axis := range a {
		out[axis.Name] = len(axis.Values)
	}
	return out
}

// Product multiplies the axis cardinalities. An empty Axes has product 1.
func (a Axes) Product() int {
	n := 1
	for _, axis := range a {
		n *= len(axis.Values)
	}
	return n
}

// Validate rejects axes with no values, duplicate axis names and values
// repeated within one axis. Values form an ordered set.
func (a Axes) Validate() error {
	seen := make(map[string]struct{}, len(a))
	for _, axis := range a {
		if len(axis.Values) == 0 {
			return errors.Wrapf(errors.ErrEmptyAxis, "axis %q", axis.Name)
		}
		if _, dup := seen[axis.Name]; dup {
			return errors.Wrapf(errors.ErrDuplicateAxis, "axis %q", axis.Name)
		}
		seen[axis.Name] = struct{}{}

		values := make(map[string]struct{}, len(axis.Values))
		for _, v := range axis.Values {
			if _, dup := values[v]; dup {
				return errors.Wrapf(errors.ErrDuplicateAxisValue, "axis %q value %q", axis.Name, v)
			}
			values[v] = struct{}{}
		}
	}
	return nil
}

// Clone returns a deep copy so callers can never mutate shared definitions.
func (a Axes) Clone() Axes {
	if a == nil {
		return nil
	}
	out := make(Axes, len(a))
	for i, axis := range a {
		out[i] = Axis{Name: axis.Name, Values: append([]string(nil), axis.Values...)}
	}
	return out
}
