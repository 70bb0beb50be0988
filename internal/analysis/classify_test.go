package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		units int
		want  Category
		n     int
	}{
		{0, CategoryShort, 10},
		{1, CategoryShort, 10},
		{10, CategoryShort, 10},
		{11, CategoryMedium, 15},
		{30, CategoryMedium, 15},
		{31, CategoryLong, 25},
		{500, CategoryLong, 25},
	}
	for _, tt := range tests {
		got := Classify(tt.units)
		assert.Equal(t, tt.want, got, "units=%d", tt.units)
		assert.Equal(t, tt.n, got.SummarySentences(), "units=%d", tt.units)
	}
}
