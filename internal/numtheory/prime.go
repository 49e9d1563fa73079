// Package numtheory implements the integer arithmetic behind textbook RSA:
// trial-division primality, factorization, Euler's totient, the extended
// Euclidean inverse and square-and-multiply exponentiation.
//
// All functions are pure and operate on int64.
package numtheory

// IsPrime reports whether k is prime using trial division by odd
// candidates up to ⌊√k⌋.
func IsPrime(k int64) bool {
	if k < 2 {
		return false
	}
	if k == 2 {
		return true
	}
	if k%2 == 0 {
		return false
	}

	// i <= k/i rather than i*i <= k: no overflow near MaxInt64
	for i := int64(3); i <= k/i; i += 2 {
		if k%i == 0 {
			return false
		}
	}
	return true
}
