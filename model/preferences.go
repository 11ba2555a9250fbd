package model

import "sort"

// Preferences maps a person to their ranked list of the opposite cohort,
// most preferred first
type Preferences map[string][]string

// Assignment maps each Big to the Littles they were matched with
type Assignment map[string][]string

// Names returns every key of the preferences, sorted
func (p Preferences) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Holds reports whether any Big in the assignment holds the given Little
func (a Assignment) Holds(little string) bool {
	return a.Load(little) > 0
}

// Load counts how many Bigs hold the given Little
func (a Assignment) Load(little string) int {
	count := 0
	for _, littles := range a {
		for _, l := range littles {
			if l == little {
				count++
			}
		}
	}
	return count
}
