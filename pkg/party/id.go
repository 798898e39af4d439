// Package party defines the stable identifiers used to address participants
// of a distributed protocol run.
package party

import "sort"

// ID identifies a single party within a protocol run. IDs are stable across
// rounds: the same value always refers to the same participant, which is
// what lets pkg/protocol.MultiHandler.Unresponsive name the parties whose
// current-round message is missing.
type ID uint16

// IDSlice is a sortable, de-duplicatable collection of party IDs.
type IDSlice []ID

func (p IDSlice) Len() int           { return len(p) }
func (p IDSlice) Less(i, j int) bool { return p[i] < p[j] }
func (p IDSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Sort returns a sorted copy of the slice.
func (p IDSlice) Sort() IDSlice {
	out := make(IDSlice, len(p))
	copy(out, p)
	sort.Sort(out)
	return out
}

// Contains reports whether id appears in the slice.
func (p IDSlice) Contains(id ID) bool {
	for _, q := range p {
		if q == id {
			return true
		}
	}
	return false
}

// Remove returns a copy of the slice with id removed, if present.
func (p IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(p))
	for _, q := range p {
		if q != id {
			out = append(out, q)
		}
	}
	return out
}

// Equal reports whether the two slices contain the same set of IDs,
// irrespective of order.
func (p IDSlice) Equal(other IDSlice) bool {
	if len(p) != len(other) {
		return false
	}
	a, b := p.Sort(), other.Sort()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Diff returns the IDs present in p but absent from other.
func (p IDSlice) Diff(other IDSlice) IDSlice {
	var out IDSlice
	for _, id := range p {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
