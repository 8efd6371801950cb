// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one extraction: search PubMed, fetch the records,
// project them to rows, write the CSV and upload it. Steps run strictly in
// sequence and the first error aborts the rest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-extract/internal/entrez"
	"github.com/pdiddy/pubmed-extract/internal/export"
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// Searcher resolves a search term to at most maxResults record identifiers.
type Searcher interface {
	Search(ctx context.Context, term string, maxResults int) ([]string, error)
}

// Fetcher retrieves the records for a list of identifiers.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string) ([]types.Record, error)
}

// Uploader copies a local file to bucket/key.
type Uploader interface {
	Upload(ctx context.Context, localPath, bucket, key string) error
}

// Extractor wires the three external collaborators together.
type Extractor struct {
	Searcher Searcher
	Fetcher  Fetcher
	Uploader Uploader

	// Log receives progress; nil discards it.
	Log logrus.FieldLogger
	// Out receives the user-facing outcome lines; nil discards them.
	Out io.Writer
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	IDs      int
	Records  int
	Rows     int
	Uploaded bool
	Elapsed  time.Duration
}

// Run executes the whole pipeline for cfg. An upload that fails for lack
// of credentials is reported on Out and leaves Summary.Uploaded false
// without an error; every other failure is returned.
func (e *Extractor) Run(ctx context.Context, cfg types.ExtractConfig) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log := e.logger().WithField("run_id", sum.RunID)

	q := entrez.Query{DateFrom: cfg.StartDate, DateTo: cfg.EndDate, MaxResults: cfg.MaxArticles}
	log.WithField("term", q.Term()).WithField("max", q.MaxResults).Info("searching PubMed")

	ids, err := e.Searcher.Search(ctx, q.Term(), q.MaxResults)
	if err != nil {
		return sum, fmt.Errorf("search: %w", err)
	}
	return e.extract(ctx, cfg, ids, sum, start, log)
}

// RunIDs executes the pipeline from the fetch step on, for identifiers
// obtained earlier (for example from a saved query file).
func (e *Extractor) RunIDs(ctx context.Context, cfg types.ExtractConfig, ids []string) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	sum := Summary{RunID: uuid.NewString()}
	log := e.logger().WithField("run_id", sum.RunID)
	return e.extract(ctx, cfg, ids, sum, time.Now(), log)
}

func (e *Extractor) extract(ctx context.Context, cfg types.ExtractConfig, ids []string, sum Summary, start time.Time, log logrus.FieldLogger) (Summary, error) {
	if len(ids) > cfg.MaxArticles {
		ids = ids[:cfg.MaxArticles]
	}
	sum.IDs = len(ids)
	log.WithField("ids", sum.IDs).Info("fetching records")

	records, err := e.Fetcher.Fetch(ctx, ids)
	if err != nil {
		return sum, fmt.Errorf("fetch: %w", err)
	}
	sum.Records = len(records)

	rows := export.Project(export.OrderByIDs(records, ids))
	sum.Rows = len(rows)
	log.WithFields(logrus.Fields{
		"records": sum.Records,
		"dropped": sum.Records - sum.Rows,
	}).Debug("projected records")

	if err := export.WriteCSV(cfg.OutputPath, rows); err != nil {
		return sum, fmt.Errorf("write: %w", err)
	}
	log.WithField("path", cfg.OutputPath).WithField("rows", sum.Rows).Info("csv written")

	uploaded, err := UploadFile(ctx, e.Uploader, cfg.OutputPath, cfg.Storage.Bucket, cfg.Storage.Key, e.out())
	if err != nil {
		return sum, fmt.Errorf("upload: %w", err)
	}
	sum.Uploaded = uploaded
	if uploaded {
		fmt.Fprintln(e.out(), "Data uploaded to S3 successfully.")
	} else {
		fmt.Fprintln(e.out(), "Failed to upload data to S3.")
	}

	sum.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"uploaded": sum.Uploaded,
		"elapsed":  sum.Elapsed.Round(time.Millisecond),
	}).Info("run finished")
	return sum, nil
}

// UploadFile uploads localPath once and reports the outcome on w. An
// authentication failure prints "Credentials not available" and returns
// (false, nil); any other failure is returned unchanged.
func UploadFile(ctx context.Context, up Uploader, localPath, bucket, key string, w io.Writer) (bool, error) {
	err := up.Upload(ctx, localPath, bucket, key)
	switch {
	case err == nil:
		fmt.Fprintf(w, "File uploaded to %s/%s\n", bucket, key)
		return true, nil
	case errors.Is(err, types.ErrServiceAuth):
		fmt.Fprintln(w, "Credentials not available")
		return false, nil
	default:
		return false, err
	}
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return e.Log
}

func (e *Extractor) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}
