// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-extract/internal/entrez"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search PubMed and print the matching identifiers",
	Long: `Search runs the relevance-sorted PubMed search for the publication date
range and prints one PMID per line. With --save the query and its PMIDs are
written to a YAML file that "extract --query-file" can reuse.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("save", "", "write the query and its identifiers to this YAML file")
	addQueryFlags(searchCmd)
	addEntrezFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := extractConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSearch(); err != nil {
		return err
	}
	q := entrez.Query{DateFrom: cfg.StartDate, DateTo: cfg.EndDate, MaxResults: cfg.MaxArticles}

	client := entrez.NewClient(httpClient(cfg.Entrez.HTTPConfig), cfg.Entrez)
	runLogger(cmd).WithField("term", q.Term()).Info("searching PubMed")

	ids, err := client.Search(cmd.Context(), q.Term(), q.MaxResults)
	if err != nil {
		return err
	}

	if path := viper.GetString("save"); path != "" {
		if err := entrez.WriteQueryFile(path, q, ids); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d identifiers to %s\n", len(ids), path)
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
