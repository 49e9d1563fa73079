package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// SealedSize is the length of a sealed private exponent: the exponent,
// four zero bytes and a checksum, encrypted as two Blowfish blocks.
const SealedSize = 16

// ErrSealCorrupted is returned when an unsealed block fails its checksum,
// usually because it was sealed under a different key.
var ErrSealCorrupted = errors.New("sealed private exponent is corrupted")

// BlowfishCipher wraps Blowfish ECB encryption/decryption.
type BlowfishCipher struct {
	cipher *blowfish.Cipher
}

// NewBlowfishCipher creates a new Blowfish ECB cipher from the given key.
// Key length must be between 1 and 56 bytes.
func NewBlowfishCipher(key []byte) (*BlowfishCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating blowfish cipher: %w", err)
	}
	return &BlowfishCipher{cipher: c}, nil
}

// Encrypt encrypts data in-place using Blowfish ECB mode.
// Data length must be a multiple of 8.
func (b *BlowfishCipher) Encrypt(data []byte, offset, size int) error {
	if size%8 != 0 {
		return fmt.Errorf("blowfish encrypt: size %d is not a multiple of 8", size)
	}
	if offset+size > len(data) {
		return fmt.Errorf("blowfish encrypt: offset %d + size %d exceeds data length %d", offset, size, len(data))
	}
	for i := offset; i < offset+size; i += 8 {
		b.cipher.Encrypt(data[i:i+8], data[i:i+8])
	}
	return nil
}

// Decrypt decrypts data in-place using Blowfish ECB mode.
// Data length must be a multiple of 8.
func (b *BlowfishCipher) Decrypt(data []byte, offset, size int) error {
	if size%8 != 0 {
		return fmt.Errorf("blowfish decrypt: size %d is not a multiple of 8", size)
	}
	if offset+size > len(data) {
		return fmt.Errorf("blowfish decrypt: offset %d + size %d exceeds data length %d", offset, size, len(data))
	}
	for i := offset; i < offset+size; i += 8 {
		b.cipher.Decrypt(data[i:i+8], data[i:i+8])
	}
	return nil
}

// AppendChecksum calculates and appends a 32-bit XOR checksum to the data.
// The last 4 bytes of the range receive the checksum.
// Size must be a multiple of 4.
func AppendChecksum(data []byte, offset, size int) {
	var checksum uint32
	for i := offset; i < offset+size-4; i += 4 {
		checksum ^= binary.LittleEndian.Uint32(data[i:])
	}
	binary.LittleEndian.PutUint32(data[offset+size-4:], checksum)
}

// VerifyChecksum verifies that XOR of all 32-bit words in the range equals zero.
func VerifyChecksum(data []byte, offset, size int) bool {
	if size%4 != 0 || size <= 4 {
		return false
	}
	var checksum uint32
	for i := offset; i < offset+size; i += 4 {
		checksum ^= binary.LittleEndian.Uint32(data[i:])
	}
	return checksum == 0
}

// Sealer protects private exponents at rest with a Blowfish key.
type Sealer struct {
	cipher *BlowfishCipher
}

// NewSealer creates a Sealer from a 1..56 byte Blowfish key.
func NewSealer(key []byte) (*Sealer, error) {
	c, err := NewBlowfishCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	return &Sealer{cipher: c}, nil
}

// Seal encrypts the private exponent d into SealedSize bytes.
func (s *Sealer) Seal(d int64) ([]byte, error) {
	buf := make([]byte, SealedSize)
	binary.BigEndian.PutUint64(buf, uint64(d))
	AppendChecksum(buf, 0, SealedSize)

	if err := s.cipher.Encrypt(buf, 0, SealedSize); err != nil {
		return nil, fmt.Errorf("sealing private exponent: %w", err)
	}
	return buf, nil
}

// Unseal reverses Seal. The input is not modified.
func (s *Sealer) Unseal(sealed []byte) (int64, error) {
	if len(sealed) != SealedSize {
		return 0, fmt.Errorf("unseal: expected %d bytes, got %d", SealedSize, len(sealed))
	}

	buf := make([]byte, SealedSize)
	copy(buf, sealed)
	if err := s.cipher.Decrypt(buf, 0, SealedSize); err != nil {
		return 0, fmt.Errorf("unsealing private exponent: %w", err)
	}

	if !VerifyChecksum(buf, 0, SealedSize) || binary.BigEndian.Uint32(buf[8:]) != 0 {
		return 0, ErrSealCorrupted
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}
