package matcher

import (
	"testing"

	"github.com/csmith/biglittle/model"
	"github.com/stretchr/testify/assert"
)

func TestRanks(t *testing.T) {
	tests := []struct {
		name     string
		prefs    model.Preferences
		expected RankMap
	}{
		{
			name:     "no preferences",
			prefs:    model.Preferences{},
			expected: RankMap{},
		},
		{
			name:     "empty list",
			prefs:    model.Preferences{"A": {}},
			expected: RankMap{"A": {}},
		},
		{
			name:  "ranks are one-based",
			prefs: model.Preferences{"A": {"X", "Y", "Z"}, "B": {"Z"}},
			expected: RankMap{
				"A": {"X": 1, "Y": 2, "Z": 3},
				"B": {"Z": 1},
			},
		},
		{
			name:     "repeated name keeps last position",
			prefs:    model.Preferences{"A": {"X", "Y", "X"}},
			expected: RankMap{"A": {"X": 3, "Y": 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Ranks(tt.prefs))
		})
	}
}

func TestRankMap_Rank(t *testing.T) {
	ranks := Ranks(model.Preferences{"A": {"X", "Y"}})

	rank, ok := ranks.Rank("A", "Y")
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok = ranks.Rank("A", "Z")
	assert.False(t, ok)

	_, ok = ranks.Rank("B", "X")
	assert.False(t, ok, "unknown person should rank nobody")

	assert.True(t, ranks.Ranked("A", "X"))
	assert.False(t, ranks.Ranked("X", "A"))
}
