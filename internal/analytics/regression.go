// internal/analytics/regression.go
package analytics

// fitQuadratic fits y = c0 + c1*x + c2*x^2 by least squares against a
// zero-based time index, solving the 3x3 normal equations directly. The
// series lengths here (<=180 points) keep the system well conditioned.
func fitQuadratic(y []float64) [3]float64 {
	n := len(y)
	if n == 0 {
		return [3]float64{}
	}

	// Power sums of the index and moment sums of y.
	var s [5]float64
	var t [3]float64
	for i, v := range y {
		x := float64(i)
		x2 := x * x
		s[0]++
		s[1] += x
		s[2] += x2
		s[3] += x2 * x
		s[4] += x2 * x2
		t[0] += v
		t[1] += v * x
		t[2] += v * x2
	}

	a := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if abs(a[row][col]) > abs(a[pivot][col]) {
				pivot = row
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		if a[col][col] == 0 {
			// Degenerate system (e.g. fewer than 3 points); leave the
			// remaining coefficients at zero.
			continue
		}
		for row := col + 1; row < 3; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 4; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	var coeffs [3]float64
	for col := 2; col >= 0; col-- {
		if a[col][col] == 0 {
			continue
		}
		v := a[col][3]
		for k := col + 1; k < 3; k++ {
			v -= a[col][k] * coeffs[k]
		}
		coeffs[col] = v / a[col][col]
	}
	return coeffs
}

func predictQuadratic(coeffs [3]float64, x float64) float64 {
	return coeffs[0] + coeffs[1]*x + coeffs[2]*x*x
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
