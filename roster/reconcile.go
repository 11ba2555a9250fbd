package roster

import (
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/csmith/biglittle/model"
)

const maxLevenshteinDistance = 2

// Correction records a preference entry that was rewritten to a registered name
type Correction struct {
	Person string
	From   string
	To     string
}

// Reconcile rewrites preference entries that don't exactly match one of the
// known names to the closest known name, provided exactly one known name is
// close enough. Entries that can't be resolved are kept as written. If a
// correction duplicates an entry already on the list, the later copy is dropped.
func Reconcile(prefs model.Preferences, known []string) (model.Preferences, []Correction) {
	exact := make(map[string]bool, len(known))
	normalized := make(map[string]string, len(known))
	for _, name := range known {
		exact[name] = true
		normalized[name] = normalizeName(name)
	}

	var corrections []Correction
	res := make(model.Preferences, len(prefs))

	for _, person := range prefs.Names() {
		list := prefs[person]
		seen := make(map[string]bool, len(list))
		out := make([]string, 0, len(list))

		for _, entry := range list {
			name := entry
			if !exact[entry] {
				if match, ok := closest(entry, known, normalized); ok {
					slog.Debug("Corrected preference", "person", person, "from", entry, "to", match)
					corrections = append(corrections, Correction{Person: person, From: entry, To: match})
					name = match
				}
			}

			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}

		res[person] = out
	}

	return res, corrections
}

// closest finds the single known name nearest to entry, if any is within
// maxLevenshteinDistance. Ties are treated as ambiguous.
func closest(entry string, known []string, normalized map[string]string) (string, bool) {
	target := normalizeName(entry)
	if target == "" {
		return "", false
	}

	best := ""
	bestDistance := maxLevenshteinDistance + 1
	ambiguous := false

	for _, name := range known {
		distance := levenshtein.ComputeDistance(target, normalized[name])
		switch {
		case distance < bestDistance:
			best = name
			bestDistance = distance
			ambiguous = false
		case distance == bestDistance:
			ambiguous = true
		}
	}

	if best == "" || ambiguous {
		return "", false
	}
	return best, true
}

func normalizeName(s string) string {
	s = strings.ToLower(s)

	// Drop punctuation people tend to add or leave out
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '\'', '"':
			return -1
		}
		return r
	}, s)

	// Clean up whitespace
	s = strings.Join(strings.Fields(s), " ")

	return s
}
