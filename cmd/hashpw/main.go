// Command hashpw reads a passphrase from the terminal without echo and
// prints its encoded argon2id hash, suitable for the password_hash field of
// a configured admin account or for seeding group/pad secrets.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dsmirnov/padkeeper/internal/server/auth"
)

func main() {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading passphrase: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "Repeat: ")
	repeat, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading passphrase: %v\n", err)
		os.Exit(1)
	}

	if string(secret) != string(repeat) {
		fmt.Fprintln(os.Stderr, "passphrases do not match")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(string(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashing passphrase: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
