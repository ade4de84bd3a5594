// Package util holds small numeric helpers shared by frame math and graph
// styling.
package util

// AbsFloat64 returns the absolute value of x.
func AbsFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ApproxEqual reports whether a and b differ by at most tol.
func ApproxEqual(a, b, tol float64) bool {
	return AbsFloat64(a-b) <= tol
}

// CleanZero maps values within tol of zero to exactly zero, so rotations by
// multiples of pi/2 print as integers.
func CleanZero(x, tol float64) float64 {
	if AbsFloat64(x) <= tol {
		return 0
	}
	return x
}

// Ptr returns a pointer to v, for optional style fields set from literals.
func Ptr[T any](v T) *T {
	return &v
}
