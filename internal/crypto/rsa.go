package crypto

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/textrsa/internal/numtheory"
)

var (
	// ErrInvalidInput is returned by GenerateKeys for parameters that cannot
	// produce a key pair. The more specific errors below all wrap it.
	ErrInvalidInput = errors.New("invalid key parameters")

	ErrNotPrime          = fmt.Errorf("%w: not prime", ErrInvalidInput)
	ErrModulusNotCoprime = fmt.Errorf("%w: n and e are not relatively prime", ErrInvalidInput)
	ErrTotientNotCoprime = fmt.Errorf("%w: phi(n) and e are not relatively prime", ErrInvalidInput)
)

// PublicKey is the public half of a textbook RSA key: modulus and exponent.
type PublicKey struct {
	N int64
	E int64
}

// KeyPair holds the modulus n = p·q, the public exponent e and the private
// exponent d with e·d ≡ 1 (mod φ(n)).
type KeyPair struct {
	N int64
	E int64
	D int64
}

// GenerateKeys derives a key pair from primes p and q and public exponent e.
//
// e is checked against n and φ(n) through its prime factors: e is coprime
// to a value exactly when none of its prime factors divides that value.
//
// p == q is accepted and yields n = p². Such a key only round-trips
// messages coprime to p; multiples of p encrypt to values that decrypt to 0.
func GenerateKeys(p, q, e int64) (KeyPair, error) {
	if !numtheory.IsPrime(p) {
		return KeyPair{}, fmt.Errorf("p = %d: %w", p, ErrNotPrime)
	}
	if !numtheory.IsPrime(q) {
		return KeyPair{}, fmt.Errorf("q = %d: %w", q, ErrNotPrime)
	}
	if e < 1 {
		return KeyPair{}, fmt.Errorf("%w: e = %d must be positive", ErrInvalidInput, e)
	}
	if p > math.MaxInt64/q {
		return KeyPair{}, fmt.Errorf("%w: n = %d * %d overflows int64", ErrInvalidInput, p, q)
	}

	n := p * q
	expFactors := numtheory.Factorize(e)

	for _, f := range expFactors {
		if n%f == 0 {
			return KeyPair{}, fmt.Errorf("n = %d, e = %d: %w", n, e, ErrModulusNotCoprime)
		}
	}

	phi := numtheory.Totient(n, numtheory.Factorize(n))

	for _, f := range expFactors {
		if phi%f == 0 {
			return KeyPair{}, fmt.Errorf("phi(n) = %d, e = %d: %w", phi, e, ErrTotientNotCoprime)
		}
	}

	d := numtheory.ModInverse(phi, e, phi)

	return KeyPair{N: n, E: e, D: d}, nil
}

// Public returns the public half of the key pair.
func (kp KeyPair) Public() PublicKey {
	return PublicKey{N: kp.N, E: kp.E}
}

// Decrypt recovers a message encrypted for this key pair.
func (kp KeyPair) Decrypt(c int64) int64 {
	return Decrypt(c, kp.N, kp.D)
}

// String formats the pair as "public (n, e) private (n, d)".
func (kp KeyPair) String() string {
	return fmt.Sprintf("public (%d, %d) private (%d, %d)", kp.N, kp.E, kp.N, kp.D)
}

// Encrypt encrypts m, 0 <= m < N, with the public key.
func (pk PublicKey) Encrypt(m int64) int64 {
	return Encrypt(m, pk.N, pk.E)
}

// Encrypt computes c = m^e mod n. No padding is applied; m must be in [0, n).
func Encrypt(m, n, e int64) int64 {
	return numtheory.ModPow(m, e, n)
}

// Decrypt computes m = c^d mod n.
func Decrypt(c, n, d int64) int64 {
	return numtheory.ModPow(c, d, n)
}
