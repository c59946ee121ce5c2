package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategoryDistribution_ParallelArrays(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	dist := NewCategoryDistribution(labels, values)

	require.Len(t, dist.Datasets, 1)
	ds := dist.Dataset()
	assert.Len(t, dist.Labels, len(labels))
	assert.Len(t, ds.Data, len(labels))
	assert.Len(t, ds.BackgroundColor, len(labels))
	assert.Equal(t, DefaultBorderWidth, ds.BorderWidth)
	assert.InDelta(t, 55.0, dist.Total(), 1e-9)
}

func TestNewCategoryDistribution_ColorsWrap(t *testing.T) {
	palette := Palette()
	labels := make([]string, len(palette)+2)
	dist := NewCategoryDistribution(labels, nil)

	colors := dist.Dataset().BackgroundColor
	assert.Equal(t, palette[0], colors[len(palette)])
	assert.Equal(t, palette[1], colors[len(palette)+1])
	for _, v := range dist.Dataset().Data {
		assert.Zero(t, v)
	}
}

func TestNewCategoryDistribution_Deterministic(t *testing.T) {
	labels := []string{"Vegetables", "Fruit", "Dairy"}

	first := NewCategoryDistribution(labels, []float64{3, 2, 1})
	second := NewCategoryDistribution(labels, []float64{30, 20, 10})

	assert.Equal(t, first.Dataset().BackgroundColor, second.Dataset().BackgroundColor)
}

func TestNewCategoryDistribution_ExtraValuesDropped(t *testing.T) {
	dist := NewCategoryDistribution([]string{"x"}, []float64{1, 2, 3})
	assert.Equal(t, []float64{1}, dist.Dataset().Data)
}

func TestColorAt(t *testing.T) {
	p := []string{"red", "blue"}
	assert.Equal(t, "red", ColorAt(p, 0))
	assert.Equal(t, "blue", ColorAt(p, 3))
	assert.Empty(t, ColorAt(nil, 1))
	assert.Empty(t, ColorAt(p, -1))
}

func TestCategoryDistribution_Clone(t *testing.T) {
	orig := NewCategoryDistribution([]string{"a"}, []float64{1})
	c := orig.Clone()
	c.Labels[0] = "z"
	c.Datasets[0].Data[0] = 9

	assert.Equal(t, "a", orig.Labels[0])
	assert.InDelta(t, 1.0, orig.Dataset().Data[0], 1e-9)
	assert.Empty(t, CategoryDistribution{}.Dataset().Data)
}
