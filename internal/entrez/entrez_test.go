// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

const sampleESearchXML = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult>
  <Count>48213</Count>
  <RetMax>3</RetMax>
  <RetStart>0</RetStart>
  <IdList>
    <Id>38012345</Id>
    <Id>38012346</Id>
    <Id>38012347</Id>
  </IdList>
  <QueryTranslation>2023/12/01:2023/12/31[Date - Publication]</QueryTranslation>
</eSearchResult>`

const sampleEFetchXML = `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2024//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_240101.dtd">
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">38012345</PMID>
      <Article PubModel="Print-Electronic">
        <ArticleTitle>Effects of <i>Lactobacillus</i> on gut flora.</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Probiotics modulate CO<sub>2</sub> output.</AbstractText>
          <AbstractText Label="METHODS">We sampled 40 patients.</AbstractText>
        </Abstract>
        <ArticleDate DateType="Electronic">
          <Year>2023</Year>
          <Month>12</Month>
          <Day>01</Day>
        </ArticleDate>
        <ArticleDate DateType="Print">
          <Year>2024</Year>
          <Month>01</Month>
          <Day>15</Day>
        </ArticleDate>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">38012346</PMID>
      <Article PubModel="Print">
        <ArticleTitle>A letter without abstract.</ArticleTitle>
        <ArticleDate DateType="Electronic">
          <Year>2023</Year>
          <Month>12</Month>
          <Day>02</Day>
        </ArticleDate>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">38012347</PMID>
      <Article PubModel="Print">
        <ArticleTitle>Undated review.</ArticleTitle>
        <Abstract>
          <AbstractText>Only an abstract.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedBookArticle>
    <BookDocument><PMID Version="1">99999999</PMID></BookDocument>
  </PubmedBookArticle>
</PubmedArticleSet>`

func testClient(t *testing.T, cfg types.EntrezConfig) *Client {
	t.Helper()
	if cfg.Email == "" {
		cfg.Email = "curator@example.org"
	}
	return NewClient(&http.Client{Timeout: 5 * time.Second}, cfg)
}

func withEndpoints(t *testing.T, search, fetch string) {
	t.Helper()
	oldSearch, oldFetch := eSearchURL, eFetchURL
	if search != "" {
		eSearchURL = search
	}
	if fetch != "" {
		eFetchURL = fetch
	}
	t.Cleanup(func() {
		eSearchURL, eFetchURL = oldSearch, oldFetch
	})
}

// --- Query ---

func TestQueryTerm(t *testing.T) {
	q := Query{
		DateFrom: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "(2023/12/01[Date - Publication] : 2023/12/31[Date - Publication])", q.Term())
}

// --- Search ---

func TestSearch_SendsParameters(t *testing.T) {
	var got url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "pubmed-extract-test/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte(sampleESearchXML))
	}))
	defer ts.Close()
	withEndpoints(t, ts.URL, "")

	c := testClient(t, types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "pubmed-extract-test/0.1"},
		APIKey:     "k123",
	})
	ids, err := c.Search(context.Background(), "(2023/12/01[Date - Publication] : 2023/12/31[Date - Publication])", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"38012345", "38012346", "38012347"}, ids)
	assert.Equal(t, "pubmed", got.Get("db"))
	assert.Equal(t, "relevance", got.Get("sort"))
	assert.Equal(t, "3", got.Get("retmax"))
	assert.Equal(t, "xml", got.Get("retmode"))
	assert.Equal(t, "curator@example.org", got.Get("email"))
	assert.Equal(t, "pubmed-extract", got.Get("tool"))
	assert.Equal(t, "k123", got.Get("api_key"))
	assert.Equal(t, "(2023/12/01[Date - Publication] : 2023/12/31[Date - Publication])", got.Get("term"))
}

func TestSearch_OmitsEmptyAPIKey(t *testing.T) {
	var got url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(sampleESearchXML))
	}))
	defer ts.Close()
	withEndpoints(t, ts.URL, "")

	_, err := testClient(t, types.EntrezConfig{}).Search(context.Background(), "term", 10)
	require.NoError(t, err)
	assert.False(t, got.Has("api_key"))
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleESearchXML))
	}))
	defer ts.Close()
	withEndpoints(t, ts.URL, "")

	ids, err := testClient(t, types.EntrezConfig{}).Search(context.Background(), "term", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"38012345", "38012346"}, ids)
}

func TestSearch_EmptyResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<eSearchResult><Count>0</Count><RetMax>0</RetMax><IdList/></eSearchResult>`))
	}))
	defer ts.Close()
	withEndpoints(t, ts.URL, "")

	ids, err := testClient(t, types.EntrezConfig{}).Search(context.Background(), "term", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"service error element", http.StatusOK, `<eSearchResult><ERROR>Invalid db name specified: pubmd</ERROR></eSearchResult>`, types.ErrNetwork},
		{"malformed xml", http.StatusOK, `<eSearchResult><IdList>`, types.ErrNetwork},
		{"server error", http.StatusInternalServerError, "", types.ErrNetwork},
		{"bad api key", http.StatusBadRequest, `{"error":"API key invalid","api-key":"k123"}`, types.ErrServiceAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			withEndpoints(t, ts.URL, "")

			_, err := testClient(t, types.EntrezConfig{}).Search(context.Background(), "term", 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSearch_RejectsBadInput(t *testing.T) {
	c := testClient(t, types.EntrezConfig{})
	_, err := c.Search(context.Background(), "", 10)
	assert.Error(t, err)
	_, err = c.Search(context.Background(), "term", 0)
	assert.Error(t, err)
}

// --- Fetch ---

func TestFetch_ParsesRecords(t *testing.T) {
	var form url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(sampleEFetchXML))
	}))
	defer ts.Close()
	withEndpoints(t, "", ts.URL)

	records, err := testClient(t, types.EntrezConfig{}).Fetch(context.Background(),
		[]string{"38012345", "38012346", "38012347"})
	require.NoError(t, err)

	assert.Equal(t, "38012345,38012346,38012347", form.Get("id"))
	assert.Equal(t, "pubmed", form.Get("db"))
	assert.Equal(t, "xml", form.Get("retmode"))
	assert.Equal(t, "curator@example.org", form.Get("email"))

	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "38012345", first.PMID)
	assert.Equal(t, "Effects of Lactobacillus on gut flora.", first.Title)
	assert.Equal(t, []string{"Probiotics modulate CO2 output.", "We sampled 40 patients."}, first.Abstract)
	assert.Equal(t, []types.ArticleDate{
		{DateType: "Electronic", Year: "2023", Month: "12", Day: "01"},
		{DateType: "Print", Year: "2024", Month: "01", Day: "15"},
	}, first.ArticleDates)
	assert.True(t, first.Exportable())

	assert.Equal(t, "38012346", records[1].PMID)
	assert.Nil(t, records[1].Abstract)
	assert.False(t, records[1].Exportable())

	assert.Equal(t, "38012347", records[2].PMID)
	assert.Nil(t, records[2].ArticleDates)
	assert.False(t, records[2].Exportable())
}

func TestFetch_EmptyIDsSkipsRequest(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer ts.Close()
	withEndpoints(t, "", ts.URL)

	records, err := testClient(t, types.EntrezConfig{}).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, called)
}

func TestFetch_SingleRequestForLargeBatch(t *testing.T) {
	calls := 0
	var gotIDs string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		gotIDs = form.Get("id")
		w.Write([]byte(`<PubmedArticleSet></PubmedArticleSet>`))
	}))
	defer ts.Close()
	withEndpoints(t, "", ts.URL)

	ids := make([]string, 5000)
	for i := range ids {
		ids[i] = "3800000" + string(rune('0'+i%10))
	}
	_, err := testClient(t, types.EntrezConfig{APIKey: "k"}).Fetch(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, gotIDs, 5000*8+4999)
}

func TestFetch_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	withEndpoints(t, "", ts.URL)

	_, err := testClient(t, types.EntrezConfig{}).Fetch(context.Background(), []string{"1"})
	assert.ErrorIs(t, err, types.ErrNetwork)
}
