package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Hex-encoded 16 random bytes yields the 32-byte key ENCRYPTION_KEY expects.
	fmt.Println(hex.EncodeToString(key))
}
