// Package config holds the environment and process helpers shared by the
// defence command binaries.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from DEFENCE_* environment variables using the
// struct's env tags. Defaults declared with envDefault apply when a variable
// is unset.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf prints a formatted message to stderr and terminates the process
// with a non-zero status. Only main packages should call it.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
