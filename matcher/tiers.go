package matcher

// Tier pairs the position of a Little on a Big's list with the position
// that Little must have given the Big for them to be matched
type Tier struct {
	Big    int
	Little int
}

// TierOrder returns the tiers to attempt, in priority order, for lists of
// up to maxRank entries
func TierOrder(maxRank int) []Tier {
	tiers := []Tier{{1, 1}, {1, 2}, {2, 1}}
	for n := 2; n+1 <= maxRank; n++ {
		tiers = append(tiers, Tier{n, n + 1})
	}
	return tiers
}
