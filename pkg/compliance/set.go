package compliance

import (
	"encoding/json"
	"sort"
)

// Set is an unordered collection of framework identifiers.
type Set map[ID]struct{}

// NewSet builds a set from ids, skipping blanks.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id unless it is blank.
func (s Set) Add(id ID) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is a member.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Union returns a new set holding the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in a stable order: vocabulary entries first, in
// display order, then unrecognized ids alphabetically.
func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		a, aok := frameworkIndex[out[i]]
		b, bok := frameworkIndex[out[j]]
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// Strings returns Sorted as plain strings.
func (s Set) Strings() []string {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}
