package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status discriminates a FetchResult.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusNoData  Status = "NO_DATA"
	StatusError   Status = "ERROR"
)

// QueryRequest is one case-status search.
type QueryRequest struct {
	CaseType    string `json:"case_type" form:"case_type"`
	CaseNumber  string `json:"case_number" form:"case_number"`
	CaseYear    string `json:"case_year" form:"case_year"`
	CaptchaText string `json:"captcha_text,omitempty" form:"captcha_text"`
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks the fields the search form requires.
func (q QueryRequest) Validate() error {
	if strings.TrimSpace(q.CaseType) == "" {
		return errors.New("case type is required")
	}
	if strings.TrimSpace(q.CaseNumber) == "" {
		return errors.New("case number is required")
	}
	if !yearPattern.MatchString(strings.TrimSpace(q.CaseYear)) {
		return fmt.Errorf("case year must be four digits, got %q", q.CaseYear)
	}
	return nil
}

// FetchResult is what a fetch always returns. Data is set only on SUCCESS;
// Message only on NO_DATA and ERROR; RawHTML only on some errors.
type FetchResult struct {
	Status    Status       `json:"status"`
	Message   string       `json:"message,omitempty"`
	ErrorKind ErrorKind    `json:"error_kind,omitempty"`
	RawHTML   string       `json:"raw_html,omitempty"`
	Data      []CaseRecord `json:"data,omitempty"`
}

// MarshalJSON always emits data on SUCCESS, even when no rows matched.
func (r FetchResult) MarshalJSON() ([]byte, error) {
	type plain FetchResult
	if r.Status != StatusSuccess {
		return json.Marshal(plain(r))
	}
	data := r.Data
	if data == nil {
		data = []CaseRecord{}
	}
	return json.Marshal(struct {
		plain
		Data []CaseRecord `json:"data"`
	}{plain(r), data})
}

// CaseRecord is one row of the results table after normalization.
type CaseRecord struct {
	CaseNo             string         `json:"case_no"`
	CaseLink           *string        `json:"case_link"`
	Party              string         `json:"party"`
	Corrigendum        string         `json:"corrigendum"`
	JudgmentLinks      []JudgmentLink `json:"judgment_links"`
	LatestJudgmentDate *Date          `json:"latest_judgment_date"`
}

// JudgmentLink is an order/judgment reference found in the date column.
type JudgmentLink struct {
	DisplayText string  `json:"display_text"`
	URL         *string `json:"url"`
	ParsedDate  *Date   `json:"parsed_date"`
	DocType     DocType `json:"doc_type"`
}

// DocType is the kind of document a judgment link points to.
type DocType string

const (
	DocUnknown DocType = ""
	DocPDF     DocType = "pdf"
	DocTXT     DocType = "txt"
)

// MarshalJSON encodes DocUnknown as null.
func (d DocType) MarshalJSON() ([]byte, error) {
	if d == DocUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *DocType) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DocUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = DocType(s)
	return nil
}

const isoDate = "2006-01-02"

// Date is a calendar date. Its string form is ISO 8601 (YYYY-MM-DD), so
// string order and chronological order agree.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

func (d Date) String() string {
	return d.Format(isoDate)
}

// YearPrefix is the four-character year of the ISO form.
func (d Date) YearPrefix() string {
	return d.String()[:4]
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// isoOrEmpty orders nil dates after every real date when sorting descending.
func isoOrEmpty(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
