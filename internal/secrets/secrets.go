// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads NCBI credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: ncbi-api-key, ncbi-email. AWS credentials are never read here;
// they come from the AWS SDK default chain.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key file names.
const (
	NCBIAPIKey = "ncbi-api-key"
	NCBIEmail  = "ncbi-email"
)

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Or returns explicit when it is non-empty, otherwise the secret stored
// under key (or "" when absent). Explicit configuration always wins.
func (s Secrets) Or(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the names of the loaded secrets, never their values.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads all regular files in dir. A missing directory is not an
// error; Load returns empty Secrets. Unreadable files produce a warning on
// warn and are skipped.
func Load(dir string, warn io.Writer) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}
