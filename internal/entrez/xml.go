// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"encoding/xml"
	"strings"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// ESearch XML structures.
type eSearchResult struct {
	Count string   `xml:"Count"`
	IDs   []string `xml:"IdList>Id"`
	Error string   `xml:"ERROR"`
}

// EFetch PubmedArticleSet XML structures. Only the fields the export uses
// are mapped; PubmedBookArticle entries are ignored.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string         `xml:"PMID"`
	Article medlineArticle `xml:"Article"`
}

type medlineArticle struct {
	Title        markupText    `xml:"ArticleTitle"`
	Abstract     *abstract     `xml:"Abstract"`
	ArticleDates []articleDate `xml:"ArticleDate"`
}

type abstract struct {
	Texts []markupText `xml:"AbstractText"`
}

type articleDate struct {
	DateType string `xml:"DateType,attr"`
	Year     string `xml:"Year"`
	Month    string `xml:"Month"`
	Day      string `xml:"Day"`
}

// record converts the XML citation into a Record. An Abstract element
// without any AbstractText counts as no abstract.
func (a pubmedArticle) record() types.Record {
	art := a.Citation.Article
	r := types.Record{
		PMID:  strings.TrimSpace(a.Citation.PMID),
		Title: string(art.Title),
	}
	if art.Abstract != nil && len(art.Abstract.Texts) > 0 {
		r.Abstract = make([]string, len(art.Abstract.Texts))
		for i, t := range art.Abstract.Texts {
			r.Abstract[i] = string(t)
		}
	}
	if len(art.ArticleDates) > 0 {
		r.ArticleDates = make([]types.ArticleDate, len(art.ArticleDates))
		for i, d := range art.ArticleDates {
			r.ArticleDates[i] = types.ArticleDate{
				DateType: d.DateType,
				Year:     strings.TrimSpace(d.Year),
				Month:    strings.TrimSpace(d.Month),
				Day:      strings.TrimSpace(d.Day),
			}
		}
	}
	return r
}

// markupText collects the character data of an element and all of its
// descendants, so titles and abstracts containing <i>, <sup> and similar
// inline tags come out as plain text.
type markupText string

func (t *markupText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			b.Write(tok)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = markupText(strings.TrimSpace(b.String()))
				return nil
			}
			depth--
		}
	}
}
