// Command gensecret prints a random hex key suitable for the platform's
// SECRET_KEY setting, which signs access tokens.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const secretKeyBytes = 32

func main() {
	b := make([]byte, secretKeyBytes)

	if _, err := rand.Read(b); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("SECRET_KEY=%s\n", hex.EncodeToString(b))
}
