// Package zipref fetches and extracts metro-area ZIP code reference
// lists. Sales teams use these to localize agency datasets to an MSA
// before scoring them.
package zipref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/pkg/httpretry"
)

var (
	// ErrTableNotFound indicates the page had no recognizable ZIP code table.
	ErrTableNotFound = errors.New("zip code table not found in page")
)

// Columns is the reference workbook header, in order.
var Columns = []string{"ZIP Code", "Place Name", "County", "ZIP Code Type"}

// Entry is one row of a metro-area ZIP list.
type Entry struct {
	ZIPCode   string `json:"zip_code"`
	PlaceName string `json:"place_name"`
	County    string `json:"county"`
	Type      string `json:"zip_code_type"`
}

// Scraper fetches ZIP lists from the reference site.
type Scraper struct {
	client    httpretry.HTTPDoer
	baseURL   string
	userAgent string
}

// NewScraper creates a scraper from config, with retrying transport.
func NewScraper(cfg config.ZipRefConfig) *Scraper {
	inner := &http.Client{Timeout: cfg.Timeout()}
	return NewScraperWithClient(httpretry.New(inner, cfg.MaxRetries, 0), cfg.BaseURL, cfg.UserAgent)
}

// NewScraperWithClient wraps a caller-provided HTTP client.
func NewScraperWithClient(client httpretry.HTTPDoer, baseURL, userAgent string) *Scraper {
	return &Scraper{
		client:    client,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
	}
}

// FetchMSA downloads and parses the ZIP list for one MSA slug.
func (s *Scraper) FetchMSA(ctx context.Context, slug string) ([]Entry, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	// The reference site rejects non-browser agents
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned HTTP %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return parseEntries(doc)
}

// parseEntries pulls rows out of the page's bordered table. Section
// header rows span the table with a colspan cell and are skipped; data
// rows have exactly four cells.
func parseEntries(doc *goquery.Document) ([]Entry, error) {
	table := doc.Find("div.col-md-12.column table.table-bordered").First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}

	var entries []Entry
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("td[colspan]").Length() > 0 {
			return
		}
		tds := tr.Find("td")
		if tds.Length() != 4 {
			return
		}
		cells := make([]string, 0, 4)
		tds.Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		entries = append(entries, Entry{
			ZIPCode:   cells[0],
			PlaceName: cells[1],
			County:    cells[2],
			Type:      cells[3],
		})
	})
	return entries, nil
}

// QuotedList formats ZIP codes as a single-quoted, comma-joined list
// ready to paste into a SQL IN clause.
func QuotedList(codes []string) string {
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "'" + c + "'"
	}
	return strings.Join(quoted, ", ")
}
