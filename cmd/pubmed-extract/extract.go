// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-extract/internal/entrez"
	"github.com/pdiddy/pubmed-extract/internal/pipeline"
	"github.com/pdiddy/pubmed-extract/internal/storage"
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Search PubMed, write the CSV and upload it",
	Long: `Extract runs the whole pipeline: a relevance-sorted PubMed search over the
publication date range, one fetch for all returned articles, projection to
title/abstract/year/month/day rows, a CSV file with a fixed header, and a
single upload of that file to the bucket.

With --query-file the search step is skipped and the identifiers saved by
"search --save" are fetched instead. Dates and max-articles default to the
values stored in the file.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("output", "", "local CSV file to write")
	extractCmd.Flags().String("query-file", "", "reuse identifiers from a saved query file instead of searching")
	addQueryFlags(extractCmd)
	addEntrezFlags(extractCmd)
	addStorageFlags(extractCmd)

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := extractConfig()
	if err != nil {
		return err
	}

	var qf *entrez.QueryFile
	if path := viper.GetString("query-file"); path != "" {
		qf, err = entrez.ReadQueryFile(path)
		if err != nil {
			return err
		}
		if err := applyQueryFile(&cfg, qf); err != nil {
			return fmt.Errorf("query file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := entrez.NewClient(httpClient(cfg.Entrez.HTTPConfig), cfg.Entrez)
	e := &pipeline.Extractor{
		Searcher: client,
		Fetcher:  client,
		Uploader: storage.NewS3Uploader(cfg.Storage),
		Log:      runLogger(cmd),
		Out:      cmd.OutOrStdout(),
	}

	var sum pipeline.Summary
	if qf != nil {
		sum, err = e.RunIDs(ctx, cfg, qf.IDs)
	} else {
		sum, err = e.Run(ctx, cfg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d articles exported to %s in %s\n",
		sum.Rows, sum.Records, cfg.OutputPath, sum.Elapsed.Round(time.Millisecond))
	return nil
}

// applyQueryFile fills the dates and article cap that cfg leaves unset from
// the saved query. Values already present in cfg win.
func applyQueryFile(cfg *types.ExtractConfig, qf *entrez.QueryFile) error {
	q, err := qf.Query.ToQuery()
	if err != nil {
		return err
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = q.DateFrom
	}
	if cfg.EndDate.IsZero() {
		cfg.EndDate = q.DateTo
	}
	if cfg.MaxArticles == 0 {
		cfg.MaxArticles = q.MaxResults
	}
	return nil
}
