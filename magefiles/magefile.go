//go:build mage

// Package main contains Mage build targets for ecoflyer developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir = "bin"
)

// binaries maps output names to their main packages.
var binaries = map[string]string{
	"ecoflyer-server": "./cmd/server",
	"ecoflyer":        "./cmd/ecoflyer",
}

// Build compiles the server and the CLI into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	for name, pkg := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests after vet.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "-race", "./...")
}

// Run builds and starts the server with the local configuration.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, "ecoflyer-server"))
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
