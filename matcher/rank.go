package matcher

import "github.com/csmith/biglittle/model"

// RankMap holds, for each person, the 1-based position of every name on
// their preference list
type RankMap map[string]map[string]int

// Ranks builds a RankMap from a set of preferences. If a name appears more
// than once in a list, its last position wins.
func Ranks(prefs model.Preferences) RankMap {
	ranks := make(RankMap, len(prefs))
	for person, list := range prefs {
		row := make(map[string]int, len(list))
		for i, other := range list {
			row[other] = i + 1
		}
		ranks[person] = row
	}
	return ranks
}

// Rank returns the position person gave other, and whether they ranked them at all
func (r RankMap) Rank(person, other string) (int, bool) {
	rank, ok := r[person][other]
	return rank, ok
}

// Ranked reports whether person put other anywhere on their list
func (r RankMap) Ranked(person, other string) bool {
	_, ok := r.Rank(person, other)
	return ok
}
