package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/court-status-fetcher/internal/scraper"
)

func success(caseNo string) scraper.FetchResult {
	return scraper.FetchResult{Status: scraper.StatusSuccess, Data: []scraper.CaseRecord{{CaseNo: caseNo}}}
}

func TestGetSet(t *testing.T) {
	c := NewCache(10, time.Minute)

	_, found := c.Get("missing")
	assert.False(t, found)

	require.NoError(t, c.Set("k", success("W.P.(C) 1/2024")))
	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "W.P.(C) 1/2024", got.Data[0].CaseNo)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
}

func TestSetRejectsNonSuccess(t *testing.T) {
	c := NewCache(10, time.Minute)

	assert.Error(t, c.Set("k", scraper.FetchResult{Status: scraper.StatusNoData}))
	assert.Error(t, c.Set("k", scraper.FetchResult{Status: scraper.StatusError}))
	assert.Zero(t, c.Stats().Size)
}

func TestEvictsWhenFull(t *testing.T) {
	c := NewCache(2, time.Minute)

	require.NoError(t, c.Set("a", success("A")))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, c.Set("b", success("B")))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, c.Set("c", success("C")))

	assert.Equal(t, 2, c.Stats().Size)
	_, found := c.Get("a")
	assert.False(t, found)
	_, found = c.Get("c")
	assert.True(t, found)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c := NewCache(2, time.Minute)

	require.NoError(t, c.Set("a", success("A")))
	require.NoError(t, c.Set("b", success("B")))
	require.NoError(t, c.Set("b", success("B2")))

	_, found := c.Get("a")
	assert.True(t, found)
}

func TestExpiry(t *testing.T) {
	c := NewCache(10, 10*time.Millisecond)
	require.NoError(t, c.Set("k", success("A")))

	time.Sleep(30 * time.Millisecond)

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestDeleteAndClear(t *testing.T) {
	c := NewCache(10, time.Minute)
	require.NoError(t, c.Set("a", success("A")))
	require.NoError(t, c.Set("b", success("B")))

	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)

	c.Clear()
	assert.Zero(t, c.Stats().Size)
	assert.Zero(t, c.Stats().Misses)
}

func TestGenerateCacheKey(t *testing.T) {
	a := GenerateCacheKey(scraper.QueryRequest{CaseType: "w.p.(c)", CaseNumber: " 55 ", CaseYear: "2024", CaptchaText: "1234"})
	b := GenerateCacheKey(scraper.QueryRequest{CaseType: "W.P.(C)", CaseNumber: "55", CaseYear: "2024"})

	assert.Equal(t, "case:W.P.(C):55:2024", b)
	assert.Equal(t, a, b)
}
