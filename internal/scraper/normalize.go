package scraper

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	datePattern = regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`)
	pdfURL      = regexp.MustCompile(`(?i)\.pdf($|\?)`)
	txtURL      = regexp.MustCompile(`(?i)\.txt($|\?)`)
)

// ParseDate finds the first DD-MM-YYYY token in text. It returns nil when
// there is none or when that token is not a real calendar date.
func ParseDate(text string) *Date {
	m := datePattern.FindString(text)
	if m == "" {
		return nil
	}
	t, err := time.Parse("02-01-2006", m)
	if err != nil {
		return nil
	}
	d := Date{t}
	return &d
}

// ClassifyDocType guesses the document type from the link URL or its text.
func ClassifyDocType(url, text string) DocType {
	lower := strings.ToLower(text)
	switch {
	case url != "" && pdfURL.MatchString(url), strings.Contains(lower, "pdf"):
		return DocPDF
	case url != "" && txtURL.MatchString(url), strings.Contains(lower, "txt"):
		return DocTXT
	}
	return DocUnknown
}

// normalizeLink turns an extracted anchor into a JudgmentLink. The date is
// taken from the text first and the URL second.
func normalizeLink(l rawLink) JudgmentLink {
	href := ""
	if l.Href != nil {
		href = *l.Href
	}

	date := ParseDate(l.Text)
	if date == nil {
		date = ParseDate(href)
	}

	return JudgmentLink{
		DisplayText: l.Text,
		URL:         l.Href,
		ParsedDate:  date,
		DocType:     ClassifyDocType(href, l.Text),
	}
}

// sortLinks orders newest first. Undated links go last and keep their order.
func sortLinks(links []JudgmentLink) {
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i].ParsedDate, links[j].ParsedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(b.Time)
	})
}

// buildRecord converts one extracted row into a CaseRecord.
func buildRecord(r rawRow) CaseRecord {
	links := make([]JudgmentLink, 0, len(r.Links))
	for _, l := range r.Links {
		links = append(links, normalizeLink(l))
	}
	sortLinks(links)

	rec := CaseRecord{
		CaseNo:        r.CaseNo,
		CaseLink:      r.CaseLink,
		Party:         r.Party,
		Corrigendum:   r.Corrigendum,
		JudgmentLinks: links,
	}
	if len(links) > 0 {
		rec.LatestJudgmentDate = links[0].ParsedDate
	}
	return rec
}

// Normalize builds records from extracted rows, keeps only those whose latest
// judgment falls in the most recent year seen, and sorts them newest first.
// When no row carries a date, every row is kept.
func Normalize(rows []rawRow) []CaseRecord {
	records := make([]CaseRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, buildRecord(r))
	}

	records = filterLatestYear(records)

	sort.SliceStable(records, func(i, j int) bool {
		return isoOrEmpty(records[i].LatestJudgmentDate) > isoOrEmpty(records[j].LatestJudgmentDate)
	})

	return records
}

func filterLatestYear(records []CaseRecord) []CaseRecord {
	latestYear := ""
	for _, r := range records {
		if r.LatestJudgmentDate == nil {
			continue
		}
		if y := r.LatestJudgmentDate.YearPrefix(); y > latestYear {
			latestYear = y
		}
	}
	if latestYear == "" {
		return records
	}

	kept := records[:0]
	for _, r := range records {
		if r.LatestJudgmentDate != nil && r.LatestJudgmentDate.YearPrefix() == latestYear {
			kept = append(kept, r)
		}
	}
	return kept
}
