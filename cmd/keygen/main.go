// Command keygen prints a P-256 signing key for JWT_SECRET and saves it to
// jwt-private-key.pem.
package main

import (
	"fmt"
	"os"
	"strings"

	"esg-assess/internal/auth"
)

func main() {
	key, err := auth.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}

	privateKeyPEM, err := auth.EncodePrivateKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generated ECDSA P-256 key pair for JWT signing.")
	fmt.Println("\nAdd this to your .env file as JWT_SECRET:")
	fmt.Println("----------------------------------------")
	fmt.Printf("JWT_SECRET=%s\n", strings.ReplaceAll(string(privateKeyPEM), "\n", `\n`))

	if err := os.WriteFile("jwt-private-key.pem", privateKeyPEM, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write private key file: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nPrivate key saved to: jwt-private-key.pem")
}
