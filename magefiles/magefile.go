//go:build mage

// Package main provides build targets for the strata project using Mage.
//
// Usage:
//
//	mage build          Compile the strata binary to bin/
//	mage test:all       Run all tests
//	mage test:postgres  Run the PostgreSQL backend tests against $POSTGRES_TEST_DSN
//	mage test:golden    Rewrite golden files from current output
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install strata to GOPATH/bin
package main
