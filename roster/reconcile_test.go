package roster

import (
	"testing"

	"github.com/csmith/biglittle/model"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase conversion",
			input:    "Jane Doe",
			expected: "jane doe",
		},
		{
			name:     "normalize whitespace",
			input:    "  Jane    Doe ",
			expected: "jane doe",
		},
		{
			name:     "remove punctuation",
			input:    "Mary-Kate O'Neil Jr.",
			expected: "mary-kate oneil jr",
		},
		{
			name:     "empty",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeName(tt.input))
		})
	}
}

func TestReconcile(t *testing.T) {
	known := []string{"Ava Smith", "Beth Jones", "Cara Lee", "Cora Lee"}

	tests := []struct {
		name        string
		prefs       model.Preferences
		expected    model.Preferences
		corrections []Correction
	}{
		{
			name:     "exact names are untouched",
			prefs:    model.Preferences{"Zoe": {"Beth Jones", "Ava Smith"}},
			expected: model.Preferences{"Zoe": {"Beth Jones", "Ava Smith"}},
		},
		{
			name:     "case and spacing",
			prefs:    model.Preferences{"Zoe": {"ava  smith"}},
			expected: model.Preferences{"Zoe": {"Ava Smith"}},
			corrections: []Correction{
				{Person: "Zoe", From: "ava  smith", To: "Ava Smith"},
			},
		},
		{
			name:     "typo",
			prefs:    model.Preferences{"Zoe": {"Beth Jnoes"}},
			expected: model.Preferences{"Zoe": {"Beth Jones"}},
			corrections: []Correction{
				{Person: "Zoe", From: "Beth Jnoes", To: "Beth Jones"},
			},
		},
		{
			name:     "ambiguous names are kept",
			prefs:    model.Preferences{"Zoe": {"Cira Lee"}},
			expected: model.Preferences{"Zoe": {"Cira Lee"}},
		},
		{
			name:     "distant names are kept",
			prefs:    model.Preferences{"Zoe": {"Dana White"}},
			expected: model.Preferences{"Zoe": {"Dana White"}},
		},
		{
			name:     "duplicates after correction are dropped",
			prefs:    model.Preferences{"Zoe": {"Ava Smith", "Beth Jones", "ava smith"}},
			expected: model.Preferences{"Zoe": {"Ava Smith", "Beth Jones"}},
			corrections: []Correction{
				{Person: "Zoe", From: "ava smith", To: "Ava Smith"},
			},
		},
		{
			name:     "empty list",
			prefs:    model.Preferences{"Zoe": {}},
			expected: model.Preferences{"Zoe": {}},
		},
		{
			name:  "corrections are ordered by person",
			prefs: model.Preferences{"Zoe": {"cara lee"}, "Amy": {"beth jones"}},
			expected: model.Preferences{
				"Zoe": {"Cara Lee"},
				"Amy": {"Beth Jones"},
			},
			corrections: []Correction{
				{Person: "Amy", From: "beth jones", To: "Beth Jones"},
				{Person: "Zoe", From: "cara lee", To: "Cara Lee"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, corrections := Reconcile(tt.prefs, known)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.corrections, corrections)
		})
	}
}

func TestReconcile_NoKnownNames(t *testing.T) {
	prefs := model.Preferences{"Zoe": {"Ava Smith"}}

	result, corrections := Reconcile(prefs, nil)
	assert.Equal(t, prefs, result)
	assert.Empty(t, corrections)
}
