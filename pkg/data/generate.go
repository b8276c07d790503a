package data

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WaterFloor is the lower bound applied to water consumption before the
// land-use multiplier.
const WaterFloor = 0.001

// Profile holds the per-category generation parameters.
type Profile struct {
	Weight float64 // share of records in this category

	// log-normal parcel area
	AreaMeanLog float64
	AreaSDLog   float64

	// bedroom count distribution: Bedrooms[i] occurs with BedroomWeights[i]
	Bedrooms       []int
	BedroomWeights []float64

	WaterMultiplier float64
}

// GeneratorParams configures Generate. Profiles is indexed by LandUse.
type GeneratorParams struct {
	Profiles [4]Profile

	// water ~ Normal(WaterBase + WaterSlope*z, WaterSD), z the standardized area
	WaterBase  float64
	WaterSlope float64
	WaterSD    float64
}

// DefaultGeneratorParams returns the parameters of the reference dataset.
func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		Profiles: [4]Profile{
			House: {
				Weight: 0.55, AreaMeanLog: math.Log(650), AreaSDLog: 0.35,
				Bedrooms: []int{2, 3, 4, 5}, BedroomWeights: []float64{0.10, 0.45, 0.35, 0.10},
				WaterMultiplier: 1.0,
			},
			RuralResidential: {
				Weight: 0.10, AreaMeanLog: math.Log(20000), AreaSDLog: 0.6,
				Bedrooms: []int{3, 4, 5}, BedroomWeights: []float64{0.30, 0.40, 0.30},
				WaterMultiplier: 1.4,
			},
			Units: {
				Weight: 0.20, AreaMeanLog: math.Log(250), AreaSDLog: 0.3,
				Bedrooms: []int{1, 2, 3}, BedroomWeights: []float64{0.30, 0.50, 0.20},
				WaterMultiplier: 0.8,
			},
			Flats: {
				Weight: 0.15, AreaMeanLog: math.Log(150), AreaSDLog: 0.25,
				Bedrooms: []int{1, 2, 3}, BedroomWeights: []float64{0.45, 0.45, 0.10},
				WaterMultiplier: 0.7,
			},
		},
		WaterBase:  500,
		WaterSlope: 120,
		WaterSD:    80,
	}
}

// MinMultiplier returns the smallest land-use water multiplier.
func (p GeneratorParams) MinMultiplier() float64 {
	m := math.Inf(1)
	for _, pr := range p.Profiles {
		m = math.Min(m, pr.WaterMultiplier)
	}
	return m
}

var ErrInvalidParams = errors.New("invalid generator parameters")

func (p GeneratorParams) validate() error {
	weights := make([]float64, len(p.Profiles))
	for i, pr := range p.Profiles {
		lu := LandUse(i)
		if pr.Weight < 0 {
			return fmt.Errorf("%w: %s weight is negative", ErrInvalidParams, lu)
		}
		if pr.AreaSDLog <= 0 {
			return fmt.Errorf("%w: %s area sigma must be positive", ErrInvalidParams, lu)
		}
		if len(pr.Bedrooms) == 0 || len(pr.Bedrooms) != len(pr.BedroomWeights) {
			return fmt.Errorf("%w: %s bedroom distribution is malformed", ErrInvalidParams, lu)
		}
		if !scalar.EqualWithinAbs(floats.Sum(pr.BedroomWeights), 1, 1e-9) {
			return fmt.Errorf("%w: %s bedroom weights must sum to 1", ErrInvalidParams, lu)
		}
		if pr.WaterMultiplier <= 0 {
			return fmt.Errorf("%w: %s water multiplier must be positive", ErrInvalidParams, lu)
		}
		weights[i] = pr.Weight
	}
	if !scalar.EqualWithinAbs(floats.Sum(weights), 1, 1e-9) {
		return fmt.Errorf("%w: land use weights must sum to 1", ErrInvalidParams)
	}
	if p.WaterSD <= 0 {
		return fmt.Errorf("%w: water sd must be positive", ErrInvalidParams)
	}
	return nil
}

// Generate draws n synthetic properties. All randomness comes from rng, so a
// fixed seed reproduces the dataset exactly.
func Generate(rng *rand.Rand, n int, p GeneratorParams) ([]Property, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidParams, n)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	landWeights := make([]float64, len(p.Profiles))
	for i, pr := range p.Profiles {
		landWeights[i] = pr.Weight
	}
	landCum := floats.CumSum(make([]float64, len(landWeights)), landWeights)

	props := make([]Property, n)
	for i := range props {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		props[i].ID = id.String()
		props[i].LandUse = LandUse(drawIndex(rng, landCum))
	}

	// Area and bedrooms depend on the category only.
	for i := range props {
		pr := p.Profiles[props[i].LandUse]
		area := distuv.LogNormal{Mu: pr.AreaMeanLog, Sigma: pr.AreaSDLog}
		props[i].ParcelArea = area.Quantile(openUnit(rng))
		bedCum := floats.CumSum(make([]float64, len(pr.BedroomWeights)), pr.BedroomWeights)
		props[i].Bedrooms = pr.Bedrooms[drawIndex(rng, bedCum)]
	}

	// Water depends on the area standardized across the whole sample.
	areas := make([]float64, n)
	for i, pr := range props {
		areas[i] = pr.ParcelArea
	}
	mean, sd := stat.MeanStdDev(areas, nil)
	for i := range props {
		z := 0.0
		if sd > 0 && !math.IsNaN(sd) {
			z = (props[i].ParcelArea - mean) / sd
		}
		water := distuv.Normal{Mu: p.WaterBase + p.WaterSlope*z, Sigma: p.WaterSD}
		w := math.Max(water.Quantile(openUnit(rng)), WaterFloor)
		props[i].WaterConsumption = w * p.Profiles[props[i].LandUse].WaterMultiplier
	}
	return props, nil
}

// openUnit draws from (0,1) so quantile functions stay finite.
func openUnit(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}

// drawIndex samples an index from a cumulative weight vector.
func drawIndex(rng *rand.Rand, cum []float64) int {
	r := rng.Float64() * cum[len(cum)-1]
	for i, c := range cum {
		if r < c {
			return i
		}
	}
	return len(cum) - 1
}
