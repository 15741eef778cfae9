// internal/analytics/regression_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitQuadraticRecoversExactPolynomial(t *testing.T) {
	// y = 3 + 2x + 0.5x^2 sampled on x = 0..19.
	y := make([]float64, 20)
	for i := range y {
		x := float64(i)
		y[i] = 3 + 2*x + 0.5*x*x
	}

	coeffs := fitQuadratic(y)
	assert.InDelta(t, 3, coeffs[0], 1e-6)
	assert.InDelta(t, 2, coeffs[1], 1e-6)
	assert.InDelta(t, 0.5, coeffs[2], 1e-6)
}

func TestFitQuadraticRecoversLine(t *testing.T) {
	y := make([]float64, 30)
	for i := range y {
		y[i] = 10 - 0.25*float64(i)
	}

	coeffs := fitQuadratic(y)
	assert.InDelta(t, 10, coeffs[0], 1e-6)
	assert.InDelta(t, -0.25, coeffs[1], 1e-6)
	assert.InDelta(t, 0, coeffs[2], 1e-6)
}

func TestFitQuadraticConstantSeries(t *testing.T) {
	coeffs := fitQuadratic([]float64{4, 4, 4, 4, 4, 4})
	for x := 0.0; x < 10; x++ {
		assert.InDelta(t, 4, predictQuadratic(coeffs, x), 1e-6)
	}
}

func TestFitQuadraticEmpty(t *testing.T) {
	assert.Equal(t, [3]float64{}, fitQuadratic(nil))
}

func TestPredictQuadratic(t *testing.T) {
	coeffs := [3]float64{1, 2, 3}
	assert.InDelta(t, 1, predictQuadratic(coeffs, 0), 1e-12)
	assert.InDelta(t, 6, predictQuadratic(coeffs, 1), 1e-12)
	assert.InDelta(t, 17, predictQuadratic(coeffs, 2), 1e-12)
}
