package financial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNPVUndiscountedYearZero(t *testing.T) {
	assert.InDelta(t, -100+110/1.1, NPV([]float64{-100, 110}, 0.1), 1e-9)
	assert.InDelta(t, 10, NPV([]float64{-100, 110}, 0), 1e-9)
}

func TestIRRSimpleTwoPeriod(t *testing.T) {
	// -100 now, 121 in a year is exactly 21%.
	r := IRR([]float64{-100, 121})
	assert.InDelta(t, 0.21, r, 1e-5)
	assert.InDelta(t, 0, NPV([]float64{-100, 121}, r), 1e-3)
}

func TestIRRMultiYear(t *testing.T) {
	// -1000 then 400/yr for 4 years; root is near 21.9%.
	cf := []float64{-1000, 400, 400, 400, 400}
	r := IRR(cf)
	assert.InDelta(t, 0, NPV(cf, r), 1e-3)
	assert.Greater(t, r, 0.20)
	assert.Less(t, r, 0.24)
}

func TestIRRNoSignChange(t *testing.T) {
	assert.Zero(t, IRR([]float64{-100, -50, -10}))
	assert.Zero(t, IRR([]float64{100, 50, 10}))
	assert.Zero(t, IRR([]float64{0, 0, 0}))
	assert.Zero(t, IRR([]float64{-100, 0, 0}))
}

func TestIRRClampedToUnity(t *testing.T) {
	// True root is 400%; the reported rate caps at 100%.
	assert.InDelta(t, 1.0, IRR([]float64{-100, 500}), 1e-9)
}

func TestPaybackYear(t *testing.T) {
	assert.Equal(t, 3, paybackYear([]float64{-100, 40, 40, 40}))
	assert.Equal(t, 0, paybackYear([]float64{0, 10}))
	// Never recovers: capped at the horizon.
	assert.Equal(t, 3, paybackYear([]float64{-100, 1, 1, 1}))
}
