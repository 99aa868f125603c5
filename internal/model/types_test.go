package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryWork, ParseCategory("work"))
	assert.Equal(t, CategorySocial, ParseCategory(" Social "))
	assert.Equal(t, CategoryOther, ParseCategory(""))
	assert.Equal(t, CategoryOther, ParseCategory("hobby"))
}

func TestJournalEntry_MarshalJSONUsesCalendarDate(t *testing.T) {
	d, err := ParseDate("2024-02-03")
	require.NoError(t, err)
	summary := "Good day"
	e := JournalEntry{ID: 7, Date: d, RawText: "secret", Summary: &summary}

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2024-02-03", out["date"])
	assert.Equal(t, "Good day", out["summary"])
	assert.NotContains(t, out, "RawText")
	assert.NotContains(t, out, "raw_text")
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("x", 5*3600)
	got := Day(time.Date(2024, 3, 9, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)
}
