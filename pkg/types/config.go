// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"net/mail"
	"time"
)

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-extract/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the NCBI E-utilities client.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the contact address NCBI requires on every E-utilities request.
	Email string `json:"email" yaml:"email"`

	// APIKey is an optional NCBI API key. With a key the request rate
	// limit rises from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Tool names this application to NCBI (default "pubmed-extract").
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// StorageConfig holds the upload destination.
type StorageConfig struct {
	// Bucket is the destination bucket name.
	Bucket string `json:"bucket" yaml:"bucket"`

	// Key is the destination object key.
	Key string `json:"key" yaml:"key"`

	// Region overrides the region resolved by the AWS default chain.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint points the client at an S3-compatible service instead of AWS.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// UsePathStyle selects path-style addressing (bucket in the URL path),
	// which most S3-compatible services require.
	UsePathStyle bool `json:"use_path_style,omitempty" yaml:"use_path_style,omitempty"`
}

// ExtractConfig is the full configuration of one extraction run. Every
// field without an "optional" note is required; there are no placeholder
// defaults.
type ExtractConfig struct {
	// OutputPath is the local CSV file to write.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// StartDate and EndDate bound the publication date range (inclusive).
	StartDate time.Time `json:"start_date" yaml:"start_date"`
	EndDate   time.Time `json:"end_date" yaml:"end_date"`

	// MaxArticles caps the number of identifiers the search may return.
	MaxArticles int `json:"max_articles" yaml:"max_articles"`

	Entrez  EntrezConfig  `json:"entrez" yaml:"entrez"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// Validate reports every missing or malformed field at once. The returned
// error wraps ErrInvalidConfig.
func (c ExtractConfig) Validate() error {
	var errs []error
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	errs = append(errs, c.searchErrors()...)
	if err := c.Storage.validate(); err != nil {
		errs = append(errs, err)
	}
	return invalid(errs)
}

// ValidateSearch checks only the fields the search step uses: the date
// range, the article cap and the Entrez contact settings.
func (c ExtractConfig) ValidateSearch() error {
	return invalid(c.searchErrors())
}

func (c ExtractConfig) searchErrors() []error {
	var errs []error
	if c.StartDate.IsZero() {
		errs = append(errs, errors.New("start date is required"))
	}
	if c.EndDate.IsZero() {
		errs = append(errs, errors.New("end date is required"))
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		errs = append(errs, fmt.Errorf("end date %s is before start date %s",
			c.EndDate.Format(DateLayout), c.StartDate.Format(DateLayout)))
	}
	if c.MaxArticles <= 0 {
		errs = append(errs, fmt.Errorf("max articles must be positive, got %d", c.MaxArticles))
	}
	if err := c.Entrez.validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func invalid(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (c EntrezConfig) validate() error {
	if c.Email == "" {
		return errors.New("contact email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("contact email %q: %w", c.Email, err)
	}
	return nil
}

func (c StorageConfig) validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if c.Key == "" {
		errs = append(errs, errors.New("object key is required"))
	}
	return errors.Join(errs...)
}

// DateLayout is the date format used in Entrez query expressions.
const DateLayout = "2006/01/02"

// ParseDate accepts "YYYY/M/D" (zero padding optional) or ISO "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006/1/2", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY/MM/DD or YYYY-MM-DD", s)
}
