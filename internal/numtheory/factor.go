package numtheory

// Factorize returns the prime factors of n in non-decreasing order, with
// repetition for multiplicity: Factorize(12) == [2 2 3].
// A prime n yields [n]. For n < 2 the result is empty.
func Factorize(n int64) []int64 {
	var factors []int64
	if n < 2 {
		return factors
	}

	for n%2 == 0 {
		factors = append(factors, 2)
		n /= 2
	}

	// Bound follows the shrinking remainder, so whatever survives the loop is prime.
	for i := int64(3); i <= n/i; i += 2 {
		for n%i == 0 {
			factors = append(factors, i)
			n /= i
		}
	}

	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

// Product multiplies the factors back together. Product(nil) == 1.
func Product(factors []int64) int64 {
	p := int64(1)
	for _, f := range factors {
		p *= f
	}
	return p
}
