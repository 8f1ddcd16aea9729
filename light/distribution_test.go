package light

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rendercore/pathtracer/core"
	"github.com/rendercore/pathtracer/math"
)

func TestDistributionWeightsByPower(t *testing.T) {
	bright := NewPointLight(math.Vec3{X: 1, Y: 0, Z: 0}, core.NewSpectrum(100, 100, 100))
	dim := NewPointLight(math.Vec3{X: -1, Y: 0, Z: 0}, core.NewSpectrum(1, 1, 1))
	d := NewDistribution([]Light{bright, dim})

	require.Greater(t, d.Pdf(0), d.Pdf(1))
	require.InDelta(t, 1.0, d.Pdf(0)+d.Pdf(1), 1e-9)
}

func TestDistributionSampleReturnsValidIndex(t *testing.T) {
	a := NewPointLight(math.Vec3{}, core.NewSpectrum(1, 1, 1))
	b := NewPointLight(math.Vec3{}, core.NewSpectrum(1, 1, 1))
	d := NewDistribution([]Light{a, b})

	idx, pdf := d.Sample(0.5)
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, 2)
	require.InDelta(t, 0.5, pdf, 1e-9)
}

func TestDistributionEmptyLightsSampleReturnsInvalid(t *testing.T) {
	d := NewDistribution(nil)
	idx, pdf := d.Sample(0.5)
	require.Equal(t, -1, idx)
	require.Equal(t, 0.0, pdf)
}

func TestPowerHeuristicFavorsLowerVarianceStrategy(t *testing.T) {
	w := PowerHeuristic(1, 0.5, 1, 0.1)
	require.Greater(t, w, 0.5)
	require.LessOrEqual(t, w, 1.0)
}

func TestPowerHeuristicZeroPdfsReturnsZero(t *testing.T) {
	require.Equal(t, 0.0, PowerHeuristic(1, 0, 1, 0))
}

func TestBalanceHeuristicSumsToOneAcrossTwoStrategies(t *testing.T) {
	a := BalanceHeuristic(1, 0.3, 1, 0.7)
	b := BalanceHeuristic(1, 0.7, 1, 0.3)
	require.InDelta(t, 1.0, a+b, 1e-9)
}
