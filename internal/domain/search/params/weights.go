package params

// Default ranking weights.
const (
	DefaultQualityWeight     = 1.95
	DefaultPopularityWeight  = 3.3
	DefaultMaintenanceWeight = 2.05
	MaxWeight                = 100
)

// Weights are the caller-supplied, unnormalized signal weights.
type Weights struct {
	Quality     float64
	Popularity  float64
	Maintenance float64
}

// DefaultWeights returns the weights applied when the caller sets none.
func DefaultWeights() Weights {
	return Weights{
		Quality:     DefaultQualityWeight,
		Popularity:  DefaultPopularityWeight,
		Maintenance: DefaultMaintenanceWeight,
	}
}

// Normalized weights sum to 1 and are each in [0,1].
// Construct them only through Weights.Normalize.
type Normalized struct {
	quality     float64
	popularity  float64
	maintenance float64
}

// Quality returns the normalized quality weight.
func (n Normalized) Quality() float64 { return n.quality }

// Popularity returns the normalized popularity weight.
func (n Normalized) Popularity() float64 { return n.popularity }

// Maintenance returns the normalized maintenance weight.
func (n Normalized) Maintenance() float64 { return n.maintenance }

// Combine returns the weighted sum of the three signals.
func (n Normalized) Combine(quality, popularity, maintenance float64) float64 {
	return quality*n.quality + popularity*n.popularity + maintenance*n.maintenance
}

// Normalize divides each weight by their sum.
// An all-zero input falls back to the normalized defaults.
func (w Weights) Normalize() Normalized {
	sum := w.Quality + w.Popularity + w.Maintenance
	if sum <= 0 {
		return DefaultNormalized()
	}
	return Normalized{
		quality:     w.Quality / sum,
		popularity:  w.Popularity / sum,
		maintenance: w.Maintenance / sum,
	}
}

// DefaultNormalized is the normalization of DefaultWeights.
func DefaultNormalized() Normalized {
	d := DefaultWeights()
	sum := d.Quality + d.Popularity + d.Maintenance
	return Normalized{
		quality:     d.Quality / sum,
		popularity:  d.Popularity / sum,
		maintenance: d.Maintenance / sum,
	}
}
