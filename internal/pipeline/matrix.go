package pipeline

import (
	"fmt"
	"math"
)

// Vec3 is a tristimulus or cone-response triple.
type Vec3 [3]float64

// Matrix3 is a row-major 3x3 transform.
type Matrix3 [3][3]float64

// Apply multiplies the matrix by a column vector.
func (m Matrix3) Apply(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Solve returns x such that m*x = b, using Gaussian elimination with
// partial pivoting. Solving instead of multiplying by a stored inverse
// keeps the numerical error of the round trip small.
func (m Matrix3) Solve(b Vec3) (Vec3, error) {
	// Augmented working copy.
	var a [3][4]float64
	for i := 0; i < 3; i++ {
		copy(a[i][:3], m[i][:])
		a[i][3] = b[i]
	}

	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return Vec3{}, fmt.Errorf("singular matrix: no pivot in column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < 3; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 4; k++ {
				a[row][k] -= f * a[col][k]
			}
		}
	}

	var x Vec3
	for i := 2; i >= 0; i-- {
		x[i] = a[i][3]
		for k := i + 1; k < 3; k++ {
			x[i] -= a[i][k] * x[k]
		}
		x[i] /= a[i][i]
	}
	return x, nil
}
