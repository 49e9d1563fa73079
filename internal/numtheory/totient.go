package numtheory

// Totient returns Euler's φ(n) given the factorization of n as produced by
// Factorize: the product over each distinct prime p with multiplicity a of
// p^(a-1)·(p-1).
//
// factors must be sorted ascending with equal primes adjacent.
// A single-element factorization means n is prime and φ(n) = n-1.
// An empty factorization is treated as n = 1.
func Totient(n int64, factors []int64) int64 {
	switch len(factors) {
	case 0:
		return 1
	case 1:
		return n - 1
	}

	totient := int64(1)
	prime, count := factors[0], 1
	for _, f := range factors[1:] {
		if f == prime {
			count++
			continue
		}
		totient *= primePowerTotient(prime, count)
		prime, count = f, 1
	}
	// last group never sees a change of value
	totient *= primePowerTotient(prime, count)

	return totient
}

// primePowerTotient returns φ(p^a) = p^(a-1)·(p-1).
func primePowerTotient(p int64, a int) int64 {
	t := p - 1
	for range a - 1 {
		t *= p
	}
	return t
}
