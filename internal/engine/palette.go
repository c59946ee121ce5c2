package engine

// DefaultBorderWidth is the border width of the category dataset.
const DefaultBorderWidth = 1

// categoryPalette is the fixed color cycle for category slices.
//
//nolint:gochecknoglobals // Read-only lookup table.
var categoryPalette = []string{
	"#FF6384",
	"#36A2EB",
	"#FFCE56",
	"#4BC0C0",
	"#9966FF",
	"#FF9F40",
	"#C9CBCF",
	"#7BC8A4",
}

// Palette returns a copy of the category color cycle.
func Palette() []string {
	out := make([]string, len(categoryPalette))
	copy(out, categoryPalette)
	return out
}

// ColorAt returns the palette color for index i. The palette wraps, so the
// result depends only on i and the palette.
func ColorAt(palette []string, i int) string {
	if len(palette) == 0 || i < 0 {
		return ""
	}
	return palette[i%len(palette)]
}

// CategoryDataset is the single dataset of a CategoryDistribution.
type CategoryDataset struct {
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// CategoryDistribution holds parallel label and value arrays.
// len(Labels) == len(Datasets[0].Data) == len(Datasets[0].BackgroundColor).
type CategoryDistribution struct {
	Labels   []string          `json:"labels"`
	Datasets []CategoryDataset `json:"datasets"`
}

// NewCategoryDistribution builds a distribution with colors assigned by
// cyclic index into the default palette. Values beyond len(labels) are
// dropped and missing values are zero, so the arrays always line up.
func NewCategoryDistribution(labels []string, values []float64) CategoryDistribution {
	return NewCategoryDistributionWithPalette(labels, values, categoryPalette)
}

// NewCategoryDistributionWithPalette is NewCategoryDistribution with an
// explicit palette.
func NewCategoryDistributionWithPalette(labels []string, values []float64, palette []string) CategoryDistribution {
	n := len(labels)
	data := make([]float64, n)
	colors := make([]string, n)
	for i := range n {
		if i < len(values) {
			data[i] = values[i]
		}
		colors[i] = ColorAt(palette, i)
	}
	lbls := make([]string, n)
	copy(lbls, labels)

	return CategoryDistribution{
		Labels: lbls,
		Datasets: []CategoryDataset{{
			Data:            data,
			BackgroundColor: colors,
			BorderWidth:     DefaultBorderWidth,
		}},
	}
}

// Dataset returns the single dataset, or an empty one.
func (c CategoryDistribution) Dataset() CategoryDataset {
	if len(c.Datasets) == 0 {
		return CategoryDataset{}
	}
	return c.Datasets[0]
}

// Total returns the sum of all values.
func (c CategoryDistribution) Total() float64 {
	total := 0.0
	for _, v := range c.Dataset().Data {
		total += v
	}
	return total
}

// Clone returns a deep copy.
func (c CategoryDistribution) Clone() CategoryDistribution {
	out := CategoryDistribution{Labels: append([]string(nil), c.Labels...)}
	for _, ds := range c.Datasets {
		out.Datasets = append(out.Datasets, CategoryDataset{
			Data:            append([]float64(nil), ds.Data...),
			BackgroundColor: append([]string(nil), ds.BackgroundColor...),
			BorderWidth:     ds.BorderWidth,
		})
	}
	return out
}
