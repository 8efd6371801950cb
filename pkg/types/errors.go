// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds surfaced by the extractor. Every failure returned from a
// pipeline step wraps exactly one of these; callers match with errors.Is.
var (
	// ErrServiceAuth covers missing or rejected credentials for Entrez or S3.
	ErrServiceAuth = errors.New("service authentication failed")

	// ErrNetwork covers transport failures and unexpected service responses.
	ErrNetwork = errors.New("network error")

	// ErrIO covers local file failures.
	ErrIO = errors.New("I/O error")

	// ErrInvalidConfig is returned by ExtractConfig.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
