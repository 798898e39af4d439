// Package product implements the direct-product combinator of spec.md
// §4.1: components are combined into one group whose operations act
// componentwise. The source this spec was distilled from models two-,
// three- and four-way products as nested pairs ((A,B),C) and
// (((A,B),C),D); spec.md §9 calls that nesting "a readability liability
// that an implementation should not copy". This package instead holds
// components in a flat slice, with Product2/Product3/Product4
// constructors giving named, type-checked access to 2-, 3- and 4-way
// products without the nesting.
package product

import (
	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
)

// PublicParameters is the direct product of the component public
// parameters.
type PublicParameters struct {
	Components []group.PublicParameters
}

func (pp *PublicParameters) Bytes() []byte {
	var out []byte
	for _, c := range pp.Components {
		b := c.Bytes()
		out = append(out, byte(len(b)>>24), byte(len(b)>>16), byte(len(b)>>8), byte(len(b)))
		out = append(out, b...)
	}
	return out
}

func (pp *PublicParameters) Equal(other group.PublicParameters) bool {
	o, ok := other.(*PublicParameters)
	if !ok || len(pp.Components) != len(o.Components) {
		return false
	}
	for i := range pp.Components {
		if !pp.Components[i].Equal(o.Components[i]) {
			return false
		}
	}
	return true
}

// Value is the direct product of the component values. Equality folds
// over every component with bitwise AND so a mismatch in any component
// cannot be distinguished by timing (spec.md §9).
type Value struct {
	Components []group.Value
}

func (v *Value) Bytes() []byte {
	var out []byte
	for _, c := range v.Components {
		out = append(out, c.Bytes()...)
	}
	return out
}

func (v *Value) Equal(other group.Value) bool {
	o, ok := other.(*Value)
	if !ok || len(v.Components) != len(o.Components) {
		return false
	}
	equal := true
	for i := range v.Components {
		eq := v.Components[i].Equal(o.Components[i])
		equal = equal && eq
	}
	return equal
}

// Element is the direct product of component elements.
type Element struct {
	Components []group.Element
}

// New builds a product element from already-constructed components. Each
// component must have been produced by its own realization's New(), so
// membership of the product holds by construction.
func New(components ...group.Element) *Element {
	return &Element{Components: components}
}

func (e *Element) Value() group.Value {
	vals := make([]group.Value, len(e.Components))
	for i, c := range e.Components {
		vals[i] = c.Value()
	}
	return &Value{Components: vals}
}

func (e *Element) PublicParameters() group.PublicParameters {
	pps := make([]group.PublicParameters, len(e.Components))
	for i, c := range e.Components {
		pps[i] = c.PublicParameters()
	}
	return &PublicParameters{Components: pps}
}

func (e *Element) Neutral() group.Element {
	out := make([]group.Element, len(e.Components))
	for i, c := range e.Components {
		out[i] = c.Neutral()
	}
	return &Element{Components: out}
}

func (e *Element) apply(other group.Element, f func(a, b group.Element) group.Element) *Element {
	o := other.(*Element)
	out := make([]group.Element, len(e.Components))
	for i := range e.Components {
		out[i] = f(e.Components[i], o.Components[i])
	}
	return &Element{Components: out}
}

func (e *Element) Add(other group.Element) group.Element {
	return e.apply(other, func(a, b group.Element) group.Element { return a.Add(b) })
}

func (e *Element) Sub(other group.Element) group.Element {
	return e.apply(other, func(a, b group.Element) group.Element { return a.Sub(b) })
}

func (e *Element) Neg() group.Element {
	out := make([]group.Element, len(e.Components))
	for i, c := range e.Components {
		out[i] = c.Neg()
	}
	return &Element{Components: out}
}

func (e *Element) Double() group.Element {
	out := make([]group.Element, len(e.Components))
	for i, c := range e.Components {
		out[i] = c.Double()
	}
	return &Element{Components: out}
}

func (e *Element) ScalarMul(scalar *saferith.Nat) group.Element {
	out := make([]group.Element, len(e.Components))
	for i, c := range e.Components {
		out[i] = c.ScalarMul(scalar)
	}
	return &Element{Components: out}
}

func (e *Element) Equal(other group.Element) bool {
	o, ok := other.(*Element)
	if !ok || len(e.Components) != len(o.Components) {
		return false
	}
	equal := true
	for i := range e.Components {
		equal = equal && e.Components[i].Equal(o.Components[i])
	}
	return equal
}

// Product2 returns a two-way direct product of a and b.
func Product2(a, b group.Element) *Element { return New(a, b) }

// Product3 returns a three-way direct product of a, b and c.
func Product3(a, b, c group.Element) *Element { return New(a, b, c) }

// Product4 returns a four-way direct product of a, b, c and d.
func Product4(a, b, c, d group.Element) *Element { return New(a, b, c, d) }

// At returns the i-th component of a product element.
func (e *Element) At(i int) group.Element { return e.Components[i] }
