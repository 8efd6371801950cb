//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and runs a full extraction. Settings come from
// pubmed-extract.yaml, .env or PUBMED_EXTRACT_* variables.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "extract")
}

// Search builds the CLI and saves the configured search to query.yaml.
func Search() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "search", "--save", "query.yaml")
}
