package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/textrsa/internal/crypto"
)

func TestRun_Defaults(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))

	want := "Public key: (n = 4087, e = 17)\n" +
		"Private key: (n = 4087, d = 233)\n" +
		"Encrypted message:\n" +
		"413 3269 3269 95 0 1 95 0 2488 935 2488 3269\n" +
		"Decrypted message:\n" +
		"MEET AT NINE\n"
	assert.Equal(t, want, out.String())
}

func TestRun_CustomKey(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-p", "3", "-q", "11", "-e", "7", "--message", "hi"}, &out))

	assert.Contains(t, out.String(), "Private key: (n = 33, d = 3)")
	assert.Contains(t, out.String(), "2 15\n")
	assert.Contains(t, out.String(), "HI\n")
}

func TestRun_InvalidKey(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-p", "4", "-q", "7", "-e", "3"}, &out)
	require.ErrorIs(t, err, crypto.ErrNotPrime)
	assert.Empty(t, out.String())
}

func TestRun_BadFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"--no-such-flag"}, &out))
}
