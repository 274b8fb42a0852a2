package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"synonym collapse and dedup", []string{"Social Dance", "social dance ", "Workshop"}, []string{"party", "workshop"}},
		{"second synonym", []string{"Bachata Party Schweiz", "Party"}, []string{"party"}},
		{"inner whitespace", []string{"Social   Dance"}, []string{"party"}},
		{"empty values dropped", []string{"", "  ", "Kurs"}, []string{"kurs"}},
		{"first occurrence order", []string{"Workshop", "Kurs", "WORKSHOP", "Party"}, []string{"workshop", "kurs", "party"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, "kurs|party|workshop", Cell([]string{"Workshop", "Social Dance", "kurs", "party"}))
	assert.Equal(t, "", Cell(nil))
}

func TestParse(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Equal(t, []string{"kurs", "party"}, Parse("kurs| party |kurs"))
}
