package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
)

// snapshotJS reads an element's markup and the document base URL in a
// single evaluation, so the result is consistent even while the grid
// re-renders. Args: selector, outer (bool).
const snapshotJS = `(sel, outer) => {
	const el = document.querySelector(sel);
	if (!el) {
		return JSON.stringify({ found: false, html: "", base: document.baseURI });
	}
	return JSON.stringify({
		found: true,
		html: outer ? el.outerHTML : el.innerHTML,
		base: document.baseURI,
	});
}`

// snapshot is the probed state of one element.
type snapshot struct {
	Found   bool   `json:"found"`
	HTML    string `json:"html"`
	BaseURL string `json:"base"`
}

func takeSnapshot(ctx context.Context, page browser.Page, selector string, outer bool) (snapshot, error) {
	raw, err := page.Eval(ctx, snapshotJS, selector, outer)
	if err != nil {
		return snapshot{}, err
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return snapshot{}, fmt.Errorf("malformed snapshot: %w", err)
	}
	return snap, nil
}

// rawRow is one table row before normalization.
type rawRow struct {
	CaseNo      string
	CaseLink    *string
	Party       string
	Corrigendum string
	Links       []rawLink
}

type rawLink struct {
	Text string
	Href *string
}

// parseTable parses an outerHTML table snapshot.
func parseTable(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// parseBody parses tbody innerHTML. Rows only survive HTML parsing inside a
// table, so the fragment is wrapped first.
func parseBody(inner string) (*goquery.Document, error) {
	return parseTable("<table><tbody>" + inner + "</tbody></table>")
}

func bodyRows(doc *goquery.Document) *goquery.Selection {
	return doc.Find("tbody").First().ChildrenFiltered("tr")
}

// signalsNoResults reports whether the grid rendered its "no data" cell.
func signalsNoResults(doc *goquery.Document, emptyCell string) bool {
	return doc.Find("tbody").First().Find(emptyCell).Length() > 0
}

// extractRows reads every body row using the column map. Cells beyond the
// end of a row yield empty fields.
func extractRows(snap snapshot, cols ColumnMap) ([]rawRow, error) {
	if !snap.Found {
		return nil, errors.New("results table is no longer on the page")
	}

	doc, err := parseTable(snap.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse table markup: %w", err)
	}

	base, err := url.Parse(snap.BaseURL)
	if err != nil || snap.BaseURL == "" {
		base = nil
	}

	var rows []rawRow
	bodyRows(doc).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		cell := func(i int) *goquery.Selection {
			if i < 0 || i >= cells.Length() {
				return nil
			}
			return cells.Eq(i)
		}

		row := rawRow{}
		if c := cell(cols.CaseNo); c != nil {
			row.CaseNo = cleanText(c.Text())
			if href, ok := c.Find("a").First().Attr("href"); ok {
				row.CaseLink = resolveHref(base, href)
			}
		}
		if c := cell(cols.Dates); c != nil {
			row.Links = extractLinks(c, base)
		}
		if c := cell(cols.Party); c != nil {
			row.Party = cleanText(c.Text())
		}
		if c := cell(cols.Corrigendum); c != nil {
			row.Corrigendum = cleanText(c.Text())
		}
		rows = append(rows, row)
	})

	return rows, nil
}

// extractLinks returns every anchor in the date cell. A cell holding only
// text becomes a single link with no URL.
func extractLinks(c *goquery.Selection, base *url.URL) []rawLink {
	var links []rawLink
	c.Find("a").Each(func(_ int, a *goquery.Selection) {
		l := rawLink{Text: cleanText(a.Text())}
		if href, ok := a.Attr("href"); ok {
			l.Href = resolveHref(base, href)
		}
		links = append(links, l)
	})

	if len(links) == 0 {
		if text := cleanText(c.Text()); text != "" {
			links = append(links, rawLink{Text: text})
		}
	}
	return links
}

func resolveHref(base *url.URL, href string) *string {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	resolved := href
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
	}
	return &resolved
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
