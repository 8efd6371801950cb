// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-extract/internal/secrets"
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pubmed-extract/0.1"
)

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("start-date", "", "publication date range start (YYYY/MM/DD)")
	cmd.Flags().String("end-date", "", "publication date range end (YYYY/MM/DD)")
	cmd.Flags().Int("max-articles", 0, "maximum number of articles to search for")
}

func addEntrezFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "contact email sent to NCBI (required by the E-utilities usage policy)")
	cmd.Flags().String("api-key", "", "NCBI API key (optional, raises the rate limit)")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
}

func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("bucket", "", "destination S3 bucket")
	cmd.Flags().String("key", "", "destination object key")
	cmd.Flags().String("region", "", "AWS region (default: AWS SDK resolution)")
	cmd.Flags().String("endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().Bool("path-style", false, "use path-style bucket addressing")
}

// dateSetting parses a date setting. An unset value yields the zero time,
// which ExtractConfig.Validate reports as missing.
func dateSetting(key string) (time.Time, error) {
	s := viper.GetString(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := types.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", types.ErrInvalidConfig, key, err)
	}
	return t, nil
}

// extractConfig assembles the run configuration from flags, config file,
// environment and secrets. It does not validate; the pipeline does.
func extractConfig() (types.ExtractConfig, error) {
	start, err := dateSetting("start-date")
	if err != nil {
		return types.ExtractConfig{}, err
	}
	end, err := dateSetting("end-date")
	if err != nil {
		return types.ExtractConfig{}, err
	}
	return types.ExtractConfig{
		OutputPath:  viper.GetString("output"),
		StartDate:   start,
		EndDate:     end,
		MaxArticles: viper.GetInt("max-articles"),
		Entrez:      entrezConfig(),
		Storage:     storageConfig(),
	}, nil
}

func entrezConfig() types.EntrezConfig {
	timeout := viper.GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Email:  loadedSecrets.Or(secrets.NCBIEmail, viper.GetString("email")),
		APIKey: loadedSecrets.Or(secrets.NCBIAPIKey, viper.GetString("api-key")),
	}
}

func storageConfig() types.StorageConfig {
	return types.StorageConfig{
		Bucket:       viper.GetString("bucket"),
		Key:          viper.GetString("key"),
		Region:       viper.GetString("region"),
		Endpoint:     viper.GetString("endpoint"),
		UsePathStyle: viper.GetBool("path-style"),
	}
}

func httpClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
