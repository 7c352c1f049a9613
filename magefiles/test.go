//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// goldenPkgs hold goldie fixtures under testdata/golden.
var goldenPkgs = []string{"./internal/cli/...", "./internal/sqlite/..."}

// All runs every test. PostgreSQL tests skip unless POSTGRES_TEST_DSN is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Postgres runs the PostgreSQL backend tests; POSTGRES_TEST_DSN must be set.
func (Test) Postgres() error {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		return errors.New("POSTGRES_TEST_DSN is not set")
	}
	env := map[string]string{"POSTGRES_TEST_DSN": dsn}
	return sh.RunWithV(env, binGo, "test", "-v", "-count=1", "./internal/postgres/...")
}

// Golden rewrites golden files from the current output.
func (Test) Golden() error {
	args := append([]string{"test"}, goldenPkgs...)
	return sh.RunV(binGo, append(args, "-update")...)
}
