package database

import (
	"time"

	"gorm.io/gorm"
)

// QueryLog is one recorded fetch attempt.
type QueryLog struct {
	gorm.Model
	RequestID    string     `json:"request_id" gorm:"index"`
	Source       string     `json:"source"`
	CaseType     string     `json:"case_type"`
	CaseNumber   string     `json:"case_number"`
	CaseYear     string     `json:"case_year"`
	Status       string     `json:"status"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RecordCount  int        `json:"record_count"`
	RawResponse  string     `json:"raw_response,omitempty" gorm:"type:text"`
	QueryTime    time.Time  `json:"query_time"`
	DurationMS   int64      `json:"duration_ms"`
	IPAddress    string     `json:"ip_address,omitempty"`
	Documents    []Document `json:"documents,omitempty" gorm:"foreignKey:QueryLogID"`
}

// Document is a judgment file downloaded for a query.
type Document struct {
	gorm.Model
	QueryLogID   uint       `json:"query_log_id" gorm:"index"`
	CaseNo       string     `json:"case_no"`
	DisplayText  string     `json:"display_text"`
	URL          string     `json:"url"`
	DocType      string     `json:"doc_type"`
	JudgmentDate *time.Time `json:"judgment_date,omitempty"`
	LocalPath    string     `json:"local_path"`
	SizeBytes    int64      `json:"size_bytes"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}

func (Document) TableName() string {
	return "documents"
}
