package scraper

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     QueryRequest
		wantErr bool
	}{
		{"valid", QueryRequest{CaseType: "W.P.(C)", CaseNumber: "55", CaseYear: "2024"}, false},
		{"empty case type", QueryRequest{CaseNumber: "55", CaseYear: "2024"}, true},
		{"blank case number", QueryRequest{CaseType: "W.P.(C)", CaseNumber: "  ", CaseYear: "2024"}, true},
		{"short year", QueryRequest{CaseType: "W.P.(C)", CaseNumber: "55", CaseYear: "24"}, true},
		{"non numeric year", QueryRequest{CaseType: "W.P.(C)", CaseNumber: "55", CaseYear: "20x4"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchResultJSON(t *testing.T) {
	t.Run("success always carries data", func(t *testing.T) {
		b, err := json.Marshal(FetchResult{Status: StatusSuccess})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"SUCCESS","data":[]}`, string(b))
	})

	t.Run("record fields", func(t *testing.T) {
		res := FetchResult{Status: StatusSuccess, Data: []CaseRecord{{
			CaseNo:             "W.P.(C) 12/2024",
			Party:              "GAMMA VS DELTA",
			JudgmentLinks:      []JudgmentLink{{DisplayText: "01-01-2024", ParsedDate: datePtr(2024, time.January, 1)}},
			LatestJudgmentDate: datePtr(2024, time.January, 1),
		}}}
		b, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"status": "SUCCESS",
			"data": [{
				"case_no": "W.P.(C) 12/2024",
				"case_link": null,
				"party": "GAMMA VS DELTA",
				"corrigendum": "",
				"judgment_links": [{"display_text": "01-01-2024", "url": null, "parsed_date": "2024-01-01", "doc_type": null}],
				"latest_judgment_date": "2024-01-01"
			}]
		}`, string(b))

		var back FetchResult
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, "2024-01-01", back.Data[0].LatestJudgmentDate.String())
		assert.Equal(t, DocUnknown, back.Data[0].JudgmentLinks[0].DocType)
	})

	t.Run("no data omits data", func(t *testing.T) {
		b, err := json.Marshal(noDataResult())
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"NO_DATA","message":"`+msgNoData+`"}`, string(b))
	})

	t.Run("error", func(t *testing.T) {
		b, err := json.Marshal(tableNotFoundError(errors.New("gone"), "<html></html>").Result())
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ERROR","message":"`+msgTableNotFound+`","error_kind":"table_not_found","raw_html":"<html></html>"}`, string(b))
	})
}

func TestStageError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	serr := navigationError(cause)

	assert.ErrorIs(t, serr, cause)
	assert.Equal(t, "navigation: Unable to reach court site: dial tcp: timeout: dial tcp: timeout", serr.Error())

	res := (&StageError{Kind: KindUnexpected}).Result()
	assert.Equal(t, "Unknown error", res.Message)
}
