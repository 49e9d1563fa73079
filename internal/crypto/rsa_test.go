package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/textrsa/internal/numtheory"
)

func TestGenerateKeys(t *testing.T) {
	tests := []struct {
		name    string
		p, q, e int64
		want    KeyPair
	}{
		{"small", 3, 11, 7, KeyPair{N: 33, E: 7, D: 3}},
		{"demo", 61, 67, 17, KeyPair{N: 4087, E: 17, D: 233}},
		{"composite exponent", 61, 67, 49, KeyPair{N: 4087, E: 49, D: 889}},
		{"exponent one", 5, 7, 1, KeyPair{N: 35, E: 1, D: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := GenerateKeys(tt.p, tt.q, tt.e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kp)
		})
	}
}

func TestGenerateKeys_PrivateExponentInverse(t *testing.T) {
	kp, err := GenerateKeys(61, 67, 17)
	require.NoError(t, err)

	// φ(4087) = 60·66
	const phi = 3960
	assert.Equal(t, int64(1), (kp.E*kp.D)%phi)
	assert.Less(t, kp.D, int64(phi))
	assert.GreaterOrEqual(t, kp.D, int64(0))
}

func TestGenerateKeys_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		p, q, e int64
		wantErr error
		wantMsg string
	}{
		{"p not prime", 4, 7, 3, ErrNotPrime, "p = 4"},
		{"q not prime", 7, 9, 5, ErrNotPrime, "q = 9"},
		{"p below two", 1, 7, 5, ErrNotPrime, "p = 1"},
		{"e divides n", 5, 11, 5, ErrModulusNotCoprime, "n = 55"},
		{"e shares factor with n", 5, 11, 15, ErrModulusNotCoprime, "e = 15"},
		{"e divides phi", 3, 11, 5, ErrTotientNotCoprime, "phi(n) = 20"},
		{"even e", 61, 67, 4, ErrTotientNotCoprime, "phi(n) = 3960"},
		{"zero e", 3, 11, 0, ErrInvalidInput, "must be positive"},
		{"modulus overflow", 4294967291, 4294967279, 3, ErrInvalidInput, "overflows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := GenerateKeys(tt.p, tt.q, tt.e)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Zero(t, kp)
		})
	}
}

func TestEncryptDecrypt_Scenario(t *testing.T) {
	assert.Equal(t, int64(14), Encrypt(5, 33, 7))
	assert.Equal(t, int64(5), Decrypt(14, 33, 3))
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	primes := []int64{3, 5, 7, 11, 13, 61, 67}
	exponents := []int64{3, 5, 7, 17, 65537}

	for _, p := range primes {
		for _, q := range primes {
			if p == q {
				continue
			}
			for _, e := range exponents {
				kp, err := GenerateKeys(p, q, e)
				if err != nil {
					// e не взаимно просто с n или φ(n)
					require.ErrorIs(t, err, ErrInvalidInput)
					continue
				}

				pub := kp.Public()
				for m := range kp.N {
					c := pub.Encrypt(m)
					if got := kp.Decrypt(c); got != m {
						t.Fatalf("key %v: Decrypt(Encrypt(%d)) = %d", kp, m, got)
					}
				}
			}
		}
	}
}

func TestEncryptDecrypt_LargeKey(t *testing.T) {
	// n ≈ 2^48: (n-1)^2 не помещается в int64
	const p, q = 16777213, 16777199
	require.True(t, numtheory.IsPrime(p))
	require.True(t, numtheory.IsPrime(q))

	kp, err := GenerateKeys(p, q, 65537)
	require.NoError(t, err)

	for _, m := range []int64{0, 1, 2, 42, 1 << 40, kp.N - 1} {
		assert.Equal(t, m, kp.Decrypt(kp.Public().Encrypt(m)), "m = %d", m)
	}
}

func TestKeyPair_String(t *testing.T) {
	kp := KeyPair{N: 33, E: 7, D: 3}
	assert.Equal(t, "public (33, 7) private (33, 3)", kp.String())
}

func TestGenerateKeys_EqualPrimes(t *testing.T) {
	kp, err := GenerateKeys(7, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, KeyPair{N: 49, E: 5, D: 17}, kp)

	for m := int64(0); m < kp.N; m++ {
		got := kp.Decrypt(kp.Public().Encrypt(m))
		if m%7 == 0 {
			// кратные p превращаются в 0 и не восстанавливаются
			assert.Equal(t, int64(0), got, "m = %d", m)
			continue
		}
		assert.Equal(t, m, got, "m = %d", m)
	}
}

func TestEncrypt_DegenerateModulus(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, int64(0), Encrypt(5, 0, 7))
		assert.Equal(t, int64(0), Decrypt(5, -33, 3))
	})
}
