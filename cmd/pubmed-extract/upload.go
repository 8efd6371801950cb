// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-extract/internal/pipeline"
	"github.com/pdiddy/pubmed-extract/internal/storage"
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an existing file to the bucket",
	Long: `Upload copies a local file to the bucket under --key (default: the file's
base name) with a single upload call. Missing credentials are reported and
the command exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	addStorageFlags(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := storageConfig()
	if cfg.Key == "" {
		cfg.Key = filepath.Base(path)
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", types.ErrInvalidConfig)
	}

	ok, err := pipeline.UploadFile(cmd.Context(), storage.NewS3Uploader(cfg), path, cfg.Bucket, cfg.Key, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("upload failed")
	}
	return nil
}
