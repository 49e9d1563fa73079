package numtheory

// ModInverse returns y with r1·y ≡ 1 (mod n) and 0 <= y < n, computed with
// the iterative Extended Euclidean Algorithm over r0 and r1.
//
// r0 is the modulus basis (φ(N) during key generation), r1 the value to
// invert. n is only used to normalize a negative Bézout coefficient, so it
// is normally equal to r0. If r1 has no inverse modulo r0 the result is
// unspecified.
func ModInverse(r0, r1, n int64) int64 {
	var (
		x0, x1 int64 = 1, 0
		y0, y1 int64 = 0, 1
	)

	for r1 != 0 {
		q := floorDiv(r0, r1)
		r0, r1 = r1, r0-q*r1
		x0, x1 = x1, x0-q*x1
		y0, y1 = y1, y0-q*y1
	}

	if y0 < 0 {
		y0 += n
	}
	return y0
}

// floorDiv divides rounding toward negative infinity, unlike Go's / which
// truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
