package region

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		locality string
		want     Region
	}{
		{"empty", "", Default},
		{"whitespace", "   ", Default},
		{"bern with postal code", "3011 Bern", Bern},
		{"bern upper case", "BERN", Bern},
		{"bern inside venue", "Dachstock, Reitschule Bern", Bern},
		{"thun", "3600 Thun", Bern},
		{"fribourg", "Fribourg/Freiburg", Bern},
		{"zürich umlaut", "8005 Zürich", Zurich},
		{"zurich ascii", "Zurich", Zurich},
		{"winterthur", "8400 Winterthur", Zurich},
		{"luzern", "6003 Luzern", Central},
		{"zug", "6300 Zug", Central},
		{"olten", "4600 Olten", SolothurnAarau},
		{"st. gallen", "9000 St. Gallen", East},
		{"st.gallen", "St.Gallen", East},
		{"chur", "Chur", East},
		{"lausanne", "1003 Lausanne", West},
		{"genève", "Genève", West},
		{"neuchatel", "Neuchatel", West},
		{"martigny", "Martigny", Wallis},
		{"lugano", "6900 Lugano", Tessin},
		{"basel", "4051 Basel", Basel},
		{"needle beats postal code", "8000 Bern", Bern},
		{"postal west low", "1200 Somewhere", West},
		{"postal west high", "2500 Somewhere", West},
		{"postal bern", "3250 Lyss", Bern},
		{"postal bern 17xx", "1712 Tafers", Bern},
		{"postal wallis", "1950 Ville", Wallis},
		{"postal wallis 39xx", "3930 Visp", Wallis},
		{"postal basel", "4410 Liestal", Basel},
		{"postal solothurn aarau", "5400 Baden", SolothurnAarau},
		{"postal central", "6440 Brunnen", Central},
		{"postal tessin", "6600 Muralto", Tessin},
		{"postal east", "7302 Landquart", East},
		{"postal east above 8200", "8500 Frauenfeld", East},
		{"postal zurich gap", "8100 Somewhere", Zurich},
		{"unknown town", "Nowhere", Default},
		{"short number", "123", Default},
		{"postal code too low", "0999", Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.locality))
		})
	}
}

func TestClassify_AnyCaseBern(t *testing.T) {
	for _, variant := range []string{"bern", "Bern", "BERN", "bErN", "Wankdorf BERN 3014", "Bern-Bümpliz"} {
		assert.Equal(t, Bern, Classify(variant), variant)
	}
}

func TestClassify_EastPostalRange(t *testing.T) {
	for code := 7000; code < 8000; code += 37 {
		locality := fmt.Sprintf("%d Ort", code)
		assert.Equal(t, East, Classify(locality), locality)
	}
	for _, code := range []int{8200, 8500, 9000, 9999} {
		locality := fmt.Sprintf("%d Ort", code)
		assert.Equal(t, East, Classify(locality), locality)
	}
}

func TestClassify_AlwaysValid(t *testing.T) {
	for _, locality := range []string{"", "???", "12", "99999", "Ünïcödé", "3000Bern", "1234 5678"} {
		require.True(t, Classify(locality).Valid(), locality)
	}
}

func TestPostalCode(t *testing.T) {
	code, ok := PostalCode("Kramgasse 1, 3011 Bern")
	require.True(t, ok)
	assert.Equal(t, 3011, code)

	_, ok = PostalCode("no digits")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	r, ok := Parse(" Region Bern ")
	require.True(t, ok)
	assert.Equal(t, Bern, r)

	_, ok = Parse("Atlantis")
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	regions := All()
	require.Len(t, regions, 9)
	regions[0] = "mutated"
	assert.Equal(t, Bern, All()[0], "All must return a copy")
}
