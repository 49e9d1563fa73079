// Package codec maps short uppercase text onto the small integers textbook
// RSA can encrypt, one letter per message.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/textrsa/internal/crypto"
)

// MaxCode is the largest value Encode produces ('Z').
const MaxCode = 26

var (
	ErrUnencodable     = errors.New("character cannot be encoded")
	ErrModulusTooSmall = errors.New("modulus too small for letter codes")
	ErrCodeOutOfRange  = errors.New("code out of letter range")
)

// Encode converts msg to letter codes: 'A'..'Z' become 1..26 and a space
// becomes 0. Lowercase letters are folded to uppercase first.
func Encode(msg string) ([]int64, error) {
	msg = strings.ToUpper(msg)
	codes := make([]int64, 0, len(msg))
	for i, r := range msg {
		switch {
		case r == ' ':
			codes = append(codes, 0)
		case r >= 'A' && r <= 'Z':
			codes = append(codes, int64(r-'A'+1))
		default:
			return nil, fmt.Errorf("%q at offset %d: %w", r, i, ErrUnencodable)
		}
	}
	return codes, nil
}

// Decode is the inverse of Encode.
func Decode(codes []int64) (string, error) {
	var sb strings.Builder
	sb.Grow(len(codes))
	for i, c := range codes {
		switch {
		case c == 0:
			sb.WriteByte(' ')
		case c >= 1 && c <= MaxCode:
			sb.WriteByte(byte('A' + c - 1))
		default:
			return "", fmt.Errorf("code %d at index %d: %w", c, i, ErrCodeOutOfRange)
		}
	}
	return sb.String(), nil
}

// EncryptText encodes msg and encrypts each letter code under pub.
func EncryptText(pub crypto.PublicKey, msg string) ([]int64, error) {
	if pub.N <= MaxCode {
		return nil, fmt.Errorf("n = %d: %w", pub.N, ErrModulusTooSmall)
	}

	codes, err := Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	for i, m := range codes {
		codes[i] = pub.Encrypt(m)
	}
	return codes, nil
}

// DecryptText decrypts each ciphertext under kp and decodes the letters.
func DecryptText(kp crypto.KeyPair, ciphers []int64) (string, error) {
	codes := make([]int64, len(ciphers))
	for i, c := range ciphers {
		codes[i] = kp.Decrypt(c)
	}

	msg, err := Decode(codes)
	if err != nil {
		return "", fmt.Errorf("decoding message: %w", err)
	}
	return msg, nil
}
