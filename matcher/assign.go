package matcher

import (
	"log/slog"
	"math"
	"sort"

	"github.com/csmith/biglittle/model"
)

// maxLoad is the most partners anyone can end up with
const maxLoad = 2

type run struct {
	bigs    model.Preferences
	littles model.Preferences

	bigRanks    RankMap
	littleRanks RankMap

	allBigs    []string
	allLittles []string

	matchedBigs    map[string]bool
	matchedLittles map[string]bool

	result model.Assignment
}

// Assign matches Bigs to Littles based on their ranked preferences.
//
// Mutually high-ranked pairs are matched first, then anyone left over is
// matched greedily, preferring partners who ranked them back. When the
// cohorts differ in size, up to two partners may be given to the people on
// the smaller side. People who cannot be placed are left out of the result.
func Assign(bigs, littles model.Preferences) model.Assignment {
	r := &run{
		bigs:           bigs,
		littles:        littles,
		bigRanks:       Ranks(bigs),
		littleRanks:    Ranks(littles),
		allBigs:        participants(bigs, littles),
		allLittles:     participants(littles, bigs),
		matchedBigs:    make(map[string]bool),
		matchedLittles: make(map[string]bool),
		result:         make(model.Assignment),
	}

	r.matchTiers()
	r.matchRemainingBigs()
	r.matchRemainingLittles()
	r.matchByPosition()
	r.distributeOverflow()

	slog.Debug(
		"Computed assignment",
		"bigs", len(r.allBigs),
		"littles", len(r.allLittles),
		"matched_bigs", len(r.matchedBigs),
		"matched_littles", len(r.matchedLittles),
	)

	return r.result
}

// participants returns everyone with their own preferences, plus everyone
// named in the other side's preferences, sorted
func participants(own, other model.Preferences) []string {
	seen := make(map[string]bool)
	for name := range own {
		seen[name] = true
	}
	for _, list := range other {
		for _, name := range list {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *run) pair(big, little string) {
	r.result[big] = append(r.result[big], little)
	r.matchedBigs[big] = true
	r.matchedLittles[little] = true
}

func (r *run) maxRank() int {
	longest := 0
	for _, list := range r.bigs {
		longest = max(longest, len(list))
	}
	for _, list := range r.littles {
		longest = max(longest, len(list))
	}
	return longest
}

// matchTiers pairs each Big with the Little at a given position on their
// list, if that Little ranked them at the tier's position in return
func (r *run) matchTiers() {
	for _, tier := range TierOrder(r.maxRank()) {
		for _, big := range r.allBigs {
			if r.matchedBigs[big] {
				continue
			}

			list := r.bigs[big]
			if len(list) < tier.Big {
				continue
			}

			little := list[tier.Big-1]
			if r.matchedLittles[little] {
				continue
			}

			if rank, ok := r.littleRanks.Rank(little, big); ok && rank == tier.Little {
				r.pair(big, little)
			}
		}
	}
}

func (r *run) matchRemainingBigs() {
	for _, big := range r.allBigs {
		if r.matchedBigs[big] {
			continue
		}
		if little, ok := bestMutualChoice(big, r.bigs[big], r.littleRanks, r.matchedLittles); ok {
			r.pair(big, little)
		}
	}
}

func (r *run) matchRemainingLittles() {
	for _, little := range r.allLittles {
		if r.matchedLittles[little] {
			continue
		}
		if big, ok := bestMutualChoice(little, r.littles[little], r.bigRanks, r.matchedBigs); ok {
			r.pair(big, little)
		}
	}
}

// bestMutualChoice returns the highest-ranked unmatched option on the list
// who also ranked person, or failing that the highest-ranked unmatched option
func bestMutualChoice(person string, list []string, otherRanks RankMap, matched map[string]bool) (string, bool) {
	for _, other := range list {
		if !matched[other] && otherRanks.Ranked(other, person) {
			return other, true
		}
	}
	for _, other := range list {
		if !matched[other] {
			return other, true
		}
	}
	return "", false
}

// matchByPosition pairs up whoever is left, ignoring preferences entirely
func (r *run) matchByPosition() {
	bigs := unmatched(r.allBigs, r.matchedBigs)
	littles := unmatched(r.allLittles, r.matchedLittles)
	for i := 0; i < min(len(bigs), len(littles)); i++ {
		r.pair(bigs[i], littles[i])
	}
}

func unmatched(names []string, matched map[string]bool) []string {
	var res []string
	for _, name := range names {
		if !matched[name] {
			res = append(res, name)
		}
	}
	return res
}

// distributeOverflow gives a second partner to people on the smaller side
// so the extras on the larger side can still be placed
func (r *run) distributeOverflow() {
	switch {
	case len(r.allLittles) > len(r.allBigs):
		for _, little := range unmatched(r.allLittles, r.matchedLittles) {
			var candidates []string
			for _, big := range r.allBigs {
				if len(r.result[big]) < maxLoad {
					candidates = append(candidates, big)
				}
			}

			big, ok := preferred(little, candidates, r.littleRanks)
			if !ok {
				break
			}
			r.result[big] = append(r.result[big], little)
			r.matchedLittles[little] = true
		}

	case len(r.allBigs) > len(r.allLittles):
		for _, big := range unmatched(r.allBigs, r.matchedBigs) {
			var candidates []string
			for _, little := range r.allLittles {
				if r.result.Load(little) < maxLoad {
					candidates = append(candidates, little)
				}
			}

			little, ok := preferred(big, candidates, r.bigRanks)
			if !ok {
				break
			}
			r.result[big] = append(r.result[big], little)
			r.matchedBigs[big] = true
		}
	}
}

// preferred picks the candidate person ranked highest. Candidates on the
// person's own list are preferred over those who aren't, and ties keep the
// order of candidates.
func preferred(person string, candidates []string, ranks RankMap) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	var mutuals []string
	for _, c := range candidates {
		if ranks.Ranked(person, c) {
			mutuals = append(mutuals, c)
		}
	}
	if len(mutuals) > 0 {
		candidates = mutuals
	}

	rankOf := func(c string) int {
		if rank, ok := ranks.Rank(person, c); ok {
			return rank
		}
		return math.MaxInt
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return rankOf(candidates[i]) < rankOf(candidates[j])
	})

	return candidates[0], true
}

// Unplaced returns the Bigs and Littles known to the preferences who do
// not appear anywhere in the assignment
func Unplaced(bigs, littles model.Preferences, assignment model.Assignment) (unplacedBigs, unplacedLittles []string) {
	for _, big := range participants(bigs, littles) {
		if len(assignment[big]) == 0 {
			unplacedBigs = append(unplacedBigs, big)
		}
	}
	for _, little := range participants(littles, bigs) {
		if !assignment.Holds(little) {
			unplacedLittles = append(unplacedLittles, little)
		}
	}
	return unplacedBigs, unplacedLittles
}
