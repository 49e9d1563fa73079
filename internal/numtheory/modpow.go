package numtheory

import "math/bits"

// ModPow computes base^exponent mod modulus by square-and-multiply.
//
// Products are formed in 128 bits before reduction, so any positive int64
// modulus is safe. A negative base is reduced into [0, modulus) first.
// A modulus below 2 yields 0; a negative exponent is treated as 0.
func ModPow(base, exponent, modulus int64) int64 {
	if modulus <= 1 {
		return 0
	}

	base %= modulus
	if base < 0 {
		base += modulus
	}

	r := int64(1)
	for exponent > 0 {
		if exponent%2 == 0 {
			exponent /= 2
			base = mulMod(base, base, modulus)
		} else {
			exponent = (exponent - 1) / 2
			r = mulMod(r, base, modulus)
			base = mulMod(base, base, modulus)
		}
	}
	return r
}

// mulMod returns a·b mod m for 0 <= a, b < m.
func mulMod(a, b, m int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return int64(bits.Rem64(hi, lo, uint64(m)))
}
