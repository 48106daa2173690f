package scraper

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Layout describes the court portal's markup. Everything the pipeline knows
// about the site's structure lives here.
type Layout struct {
	SearchPath string    `toml:"search_path"`
	Selectors  Selectors `toml:"selectors"`
	Columns    ColumnMap `toml:"columns"`
}

// Selectors are CSS selectors for the search form and results table.
type Selectors struct {
	CaseType       string `toml:"case_type"`
	CaseNumber     string `toml:"case_number"`
	CaseYear       string `toml:"case_year"`
	CaptchaDisplay string `toml:"captcha_display"`
	CaptchaInput   string `toml:"captcha_input"`
	Submit         string `toml:"submit"`
	ResultsTable   string `toml:"results_table"`
	Processing     string `toml:"processing"`
	EmptyCell      string `toml:"empty_cell"`
}

// ColumnMap maps record fields to zero-based cell indexes within a row.
// A negative index disables the field.
type ColumnMap struct {
	CaseNo      int `toml:"case_no"`
	Dates       int `toml:"dates"`
	Party       int `toml:"party"`
	Corrigendum int `toml:"corrigendum"`
}

// DefaultLayout matches the High Court of Delhi case-number search page.
// Column 0 is the serial number and is not extracted.
func DefaultLayout() Layout {
	return Layout{
		SearchPath: "/app/case-number",
		Selectors: Selectors{
			CaseType:       "#case_type",
			CaseNumber:     "#case_number",
			CaseYear:       "#year",
			CaptchaDisplay: "#captcha-code",
			CaptchaInput:   "#captchaInput",
			Submit:         "#search",
			ResultsTable:   "#s_judgeTable",
			Processing:     ".dataTables_processing",
			EmptyCell:      "td.dataTables_empty",
		},
		Columns: ColumnMap{
			CaseNo:      1,
			Dates:       2,
			Party:       3,
			Corrigendum: 4,
		},
	}
}

// LoadLayout reads a TOML file over DefaultLayout. Keys absent from the
// file keep their defaults. An empty path returns the defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read site layout: %w", err)
	}
	if err := toml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse site layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("invalid site layout %s: %w", path, err)
	}
	return layout, nil
}

// Validate checks that every selector the pipeline uses is set.
func (l Layout) Validate() error {
	s := l.Selectors
	required := map[string]string{
		"case_type":       s.CaseType,
		"case_number":     s.CaseNumber,
		"case_year":       s.CaseYear,
		"captcha_display": s.CaptchaDisplay,
		"captcha_input":   s.CaptchaInput,
		"submit":          s.Submit,
		"results_table":   s.ResultsTable,
		"empty_cell":      s.EmptyCell,
	}
	for name, v := range required {
		if v == "" {
			return fmt.Errorf("selector %s is empty", name)
		}
	}
	if l.Columns.CaseNo < 0 {
		return errors.New("case_no column is required")
	}
	return nil
}

// tbodySelector is the results body inside the table.
func (s Selectors) tbodySelector() string {
	return s.ResultsTable + " tbody"
}
