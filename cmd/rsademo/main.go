// Command rsademo generates a textbook RSA key pair, encrypts a short
// uppercase message letter by letter and decrypts it again.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/udisondev/textrsa/internal/codec"
	"github.com/udisondev/textrsa/internal/crypto"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("rsademo failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rsademo", flag.ContinueOnError)
	fs.SetOutput(out)
	p := fs.Int64P("prime-p", "p", 61, "first prime")
	q := fs.Int64P("prime-q", "q", 67, "second prime")
	e := fs.Int64P("exponent", "e", 17, "public exponent, coprime to (p-1)(q-1)")
	msg := fs.StringP("message", "m", "MEET AT NINE", "message of letters A-Z and spaces")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kp, err := crypto.GenerateKeys(*p, *q, *e)
	if err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	fmt.Fprintf(out, "Public key: (n = %d, e = %d)\n", kp.N, kp.E)
	fmt.Fprintf(out, "Private key: (n = %d, d = %d)\n", kp.N, kp.D)

	ciphers, err := codec.EncryptText(kp.Public(), *msg)
	if err != nil {
		return fmt.Errorf("encrypting message: %w", err)
	}
	fmt.Fprintln(out, "Encrypted message:")
	fmt.Fprintln(out, joinInts(ciphers))

	plain, err := codec.DecryptText(kp, ciphers)
	if err != nil {
		return fmt.Errorf("decrypting message: %w", err)
	}
	fmt.Fprintln(out, "Decrypted message:")
	fmt.Fprintln(out, plain)

	return nil
}

func joinInts(xs []int64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
