// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export projects PubMed records onto rows and writes them as CSV.
package export

import (
	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// RowFromRecord projects r onto a Row using the first abstract segment and
// the first article date. It reports false when r is not exportable.
func RowFromRecord(r types.Record) (types.Row, bool) {
	if !r.Exportable() {
		return types.Row{}, false
	}
	date := r.ArticleDates[0]
	return types.Row{
		Title:    r.Title,
		Abstract: r.Abstract[0],
		Year:     date.Year,
		Month:    date.Month,
		Day:      date.Day,
	}, true
}

// Project converts records to rows in input order, dropping records that
// lack an abstract or a structured date.
func Project(records []types.Record) []types.Row {
	rows := make([]types.Row, 0, len(records))
	for _, r := range records {
		if row, ok := RowFromRecord(r); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// OrderByIDs returns records sorted into the order of ids, matched by
// PMID. EFetch does not document that it preserves request order, so the
// search ranking is restored explicitly. Records whose PMID is not in ids
// are dropped, and each id yields at most one record (the first returned),
// so the result never holds more records than ids.
func OrderByIDs(records []types.Record, ids []string) []types.Record {
	byID := make(map[string]types.Record, len(records))
	for _, r := range records {
		if _, seen := byID[r.PMID]; !seen {
			byID[r.PMID] = r
		}
	}

	ordered := make([]types.Record, 0, min(len(ids), len(byID)))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
			delete(byID, id)
		}
	}
	return ordered
}
