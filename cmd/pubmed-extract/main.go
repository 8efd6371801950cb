// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-extract CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-extract/internal/logger"
	"github.com/pdiddy/pubmed-extract/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds NCBI keys loaded from the secrets directory at startup.
	loadedSecrets secrets.Secrets

	// log is configured from --log-level before any command runs.
	log = logger.New("info", os.Stderr)
)

// rootCmd is the base command for the pubmed-extract CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-extract",
	Short: "Export PubMed search results to CSV and upload them to S3",
	Long: `pubmed-extract searches PubMed for articles published in a date range,
keeps the title, abstract and publication date of every article that has both
an abstract and a structured date, writes them to a CSV file and uploads the
file to an S3 bucket.

Every setting can come from a flag, the config file, a .env file or a
PUBMED_EXTRACT_* environment variable. NCBI keys may also be stored in the
secrets directory (ncbi-email, ncbi-api-key). AWS credentials are resolved
by the AWS SDK default chain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
		log = logger.New(viper.GetString("log-level"), cmd.ErrOrStderr())

		s, err := secrets.Load(viper.GetString("secrets-dir"), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			log.WithField("keys", keys).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-extract.yaml or ~/.config/pubmed-extract/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files (ncbi-email, ncbi-api-key)")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-extract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-extract"))
		}
	}

	viper.SetEnvPrefix("PUBMED_EXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("run failed")
		stop()
		os.Exit(1)
	}
}

// runLogger returns the command-scoped logger.
func runLogger(cmd *cobra.Command) logrus.FieldLogger {
	return log.WithField("cmd", cmd.Name())
}
