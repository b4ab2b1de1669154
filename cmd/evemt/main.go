// Package main provides the entry point for the evemt CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Embers-of-the-Fire/evemt/cmd/evemt/cmd"
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, apperrors.FormatForCLI(err))
		os.Exit(1)
	}
}
