package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"aerogate/internal/crypto"
)

// TODO(tool-genmasterkey-rotate): Add --rotate to re-seal stored templates under a new key once members persist across restarts.

func main() {
	out := pflag.StringP("out", "o", "master.key", "file to write the hex-encoded key to")
	force := pflag.BoolP("force", "f", false, "overwrite an existing key file")
	pflag.Parse()

	if _, err := os.Stat(*out); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Refusing to overwrite (use --force).\n", *out)
		os.Exit(1)
	}
	key, err := crypto.GenerateMasterKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating random key: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, []byte(hex.EncodeToString(key)+"\n"), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Master key written to %s\n", *out)
}
