// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures, configuration and error
// kinds for the pubmed-extract pipeline.
package types

// Record is one PubMed citation as returned by EFetch.
type Record struct {
	// PMID is the PubMed identifier of the citation.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title with inline markup flattened to text.
	Title string `json:"title" yaml:"title"`

	// Abstract holds the AbstractText segments in document order.
	// Nil means the citation carries no abstract.
	Abstract []string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// ArticleDates holds the structured article dates in document order.
	// Nil means the citation carries no structured date.
	ArticleDates []ArticleDate `json:"article_dates,omitempty" yaml:"article_dates,omitempty"`
}

// ArticleDate is a structured (year, month, day) date attached to a record.
// Values are kept exactly as the service returned them.
type ArticleDate struct {
	DateType string `json:"date_type,omitempty" yaml:"date_type,omitempty"`
	Year     string `json:"year" yaml:"year"`
	Month    string `json:"month" yaml:"month"`
	Day      string `json:"day" yaml:"day"`
}

// Exportable reports whether the record has both an abstract and a
// structured date, the only records that become rows.
func (r Record) Exportable() bool {
	return len(r.Abstract) > 0 && len(r.ArticleDates) > 0
}

// Row is the exported projection of a record.
type Row struct {
	Title    string
	Abstract string
	Year     string
	Month    string
	Day      string
}

// CSVHeader is the fixed header of the output file.
var CSVHeader = []string{
	"Article Title",
	"Article Abstract",
	"Publication Year",
	"Publication Month",
	"Publication Day",
}

// Fields returns the row in CSVHeader column order.
func (r Row) Fields() []string {
	return []string{r.Title, r.Abstract, r.Year, r.Month, r.Day}
}
