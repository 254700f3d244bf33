package domain

import "strings"

// engineSuffixes are artifacts the scene layer appends to entity names.
var engineSuffixes = []string{"(clone)", "(sliced)", "(instance)"}

// NormalizeIngredient turns a raw entity name into an ingredient token.
// "Potato(Clone) " becomes "potato". Returns ErrInvalidIngredient when
// nothing is left after normalization.
func NormalizeIngredient(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for changed := true; changed; {
		changed = false
		for _, suffix := range engineSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
				changed = true
			}
		}
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", ErrInvalidIngredient
	}
	return name, nil
}

// Multiset counts occurrences of each ingredient token.
type Multiset map[string]int

// NewMultiset builds a multiset from a list of tokens.
func NewMultiset(items []string) Multiset {
	m := make(Multiset, len(items))
	for _, it := range items {
		m[it]++
	}
	return m
}

// Equal reports exact multiset equality (same elements, same multiplicities).
func (m Multiset) Equal(other Multiset) bool {
	if len(m) != len(other) {
		return false
	}
	for k, n := range m {
		if other[k] != n {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every element of m occurs in other at least as often.
func (m Multiset) SubsetOf(other Multiset) bool {
	for k, n := range m {
		if other[k] < n {
			return false
		}
	}
	return true
}
