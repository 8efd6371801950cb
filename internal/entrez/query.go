// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// Query is a publication-date range search capped at MaxResults PMIDs.
type Query struct {
	DateFrom   time.Time
	DateTo     time.Time
	MaxResults int
}

// Term compiles the query into an Entrez search expression, e.g.
// "(2023/12/01[Date - Publication] : 2023/12/31[Date - Publication])".
func (q Query) Term() string {
	return fmt.Sprintf("(%s[Date - Publication] : %s[Date - Publication])",
		q.DateFrom.Format(types.DateLayout), q.DateTo.Format(types.DateLayout))
}

// QueryFile is the on-disk representation of a search and the PMIDs it
// returned. Saving a search lets a later extract run fetch exactly the same
// identifiers without querying ESearch again.
type QueryFile struct {
	Query   QueryParams  `yaml:"query"`
	IDs     []string     `yaml:"ids"`
	Summary QuerySummary `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Term       string `yaml:"term"`
	DateFrom   string `yaml:"date_from"`
	DateTo     string `yaml:"date_to"`
	MaxResults int    `yaml:"max_results"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the query and its PMIDs to a YAML file.
func WriteQueryFile(path string, q Query, ids []string) error {
	qf := QueryFile{
		Query: QueryParams{
			Term:       q.Term(),
			DateFrom:   q.DateFrom.Format(types.DateLayout),
			DateTo:     q.DateTo.Format(types.DateLayout),
			MaxResults: q.MaxResults,
		},
		IDs: ids,
		Summary: QuerySummary{
			Total:     len(ids),
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing query file: %w", types.ErrIO, err)
	}
	return nil
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading query file: %w", types.ErrIO, err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() (Query, error) {
	q := Query{MaxResults: p.MaxResults}
	from, err := types.ParseDate(p.DateFrom)
	if err != nil {
		return q, fmt.Errorf("date_from: %w", err)
	}
	to, err := types.ParseDate(p.DateTo)
	if err != nil {
		return q, fmt.Errorf("date_to: %w", err)
	}
	q.DateFrom, q.DateTo = from, to
	return q, nil
}
