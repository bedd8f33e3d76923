package geometry

import "math"

// SingularEpsilon is the smallest pivot Solve3x3 accepts.
const SingularEpsilon = 1e-9

// Solve3x3 solves m·x = v by Gauss-Jordan elimination with partial pivoting.
//
// ok is false when a pivot falls below SingularEpsilon or the solution is not
// finite; the returned vector is then meaningless.
func Solve3x3(m [3][3]float64, v [3]float64) (x [3]float64, ok bool) {
	a := m
	b := v

	for col := 0; col < 3; col++ {
		pivotRow := col
		pivotVal := math.Abs(a[col][col])
		for r := col + 1; r < 3; r++ {
			if val := math.Abs(a[r][col]); val > pivotVal {
				pivotVal = val
				pivotRow = r
			}
		}
		if pivotVal < SingularEpsilon {
			return x, false
		}
		if pivotRow != col {
			a[col], a[pivotRow] = a[pivotRow], a[col]
			b[col], b[pivotRow] = b[pivotRow], b[col]
		}

		pivot := a[col][col]
		for c := col; c < 3; c++ {
			a[col][c] /= pivot
		}
		b[col] /= pivot

		for r := 0; r < 3; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			for c := col; c < 3; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	if !IsFinite(b[0]) || !IsFinite(b[1]) || !IsFinite(b[2]) {
		return x, false
	}
	return b, true
}

// PrincipalAxis returns the unit eigenvector belonging to the larger
// eigenvalue of the symmetric matrix [[sxx, sxy], [sxy, syy]].
//
// The closed form breaks down when the matrix is a multiple of the identity
// (no preferred direction); the x axis is returned in that case.
func PrincipalAxis(sxx, sxy, syy float64) (vx, vy float64) {
	trace := sxx + syy
	det := sxx*syy - sxy*sxy
	disc := math.Sqrt(math.Max(0, trace*trace/4-det))
	lambda := trace/2 + disc

	vx, vy = sxy, lambda-sxx
	if math.Hypot(vx, vy) < degenerateLen {
		// sxy == 0 and sxx is already the larger eigenvalue, or both are equal.
		if syy > sxx {
			return 0, 1
		}
		return 1, 0
	}
	l := math.Hypot(vx, vy)
	return vx / l, vy / l
}
