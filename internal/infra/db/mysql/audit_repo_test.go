package mysql

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/petmoji/internal/domain/audit"
)

// fakeRow hands out column values in selectColumns order.
type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		v := reflect.ValueOf(r.values[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: column %d is %s, destination is %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

func columnList(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols
}

func rowFor(t *testing.T, byName map[string]any) fakeRow {
	t.Helper()
	cols := columnList(selectColumns)
	require.Len(t, byName, len(cols))
	row := fakeRow{}
	for _, c := range cols {
		v, ok := byName[c]
		require.True(t, ok, "no value for column %q", c)
		row.values = append(row.values, v)
	}
	return row
}

func TestScanRecordFollowsSelectColumns(t *testing.T) {
	created := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	cols := map[string]any{
		"id":             "rec-1",
		"session_id":     "sess-1",
		"provider":       "openai",
		"model":          "gpt-4o",
		"prompt_version": "v2",
		"status":         "success",
		"error_kind":     "",
		"error_detail":   "",
		"emoji":          "😴",
		"comment":        "Sleepy.",
		"confidence":     sql.NullFloat64{Float64: 82.5, Valid: true},
		"photo_mime":     "image/png",
		"photo_bytes":    2048,
		"photo_url":      "https://bucket.example/rec-1.png",
		"duration_ms":    int64(1200),
		"created_at":     created,
	}

	a, err := scanRecord(rowFor(t, cols))
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("rec-1"), a.ID)
	assert.Equal(t, "sess-1", a.SessionID)
	assert.Equal(t, "openai", a.Provider)
	assert.Equal(t, "gpt-4o", a.Model)
	assert.Equal(t, "v2", a.PromptVersion)
	assert.Equal(t, domain.Status("success"), a.Status)
	assert.Empty(t, a.ErrorKind)
	assert.Empty(t, a.ErrorDetail)
	assert.Equal(t, "😴", a.Emoji)
	assert.Equal(t, "Sleepy.", a.Comment)
	require.NotNil(t, a.Confidence)
	assert.Equal(t, 82.5, *a.Confidence)
	assert.Equal(t, "image/png", a.PhotoMIME)
	assert.Equal(t, 2048, a.PhotoBytes)
	assert.Equal(t, "https://bucket.example/rec-1.png", a.PhotoURL)
	assert.Equal(t, int64(1200), a.DurationMS)
	assert.Equal(t, created, a.CreatedAt)

	// failed rows: no session, no confidence
	cols["session_id"] = "-"
	cols["status"] = "failed"
	cols["error_kind"] = "provider"
	cols["error_detail"] = "upstream 503"
	cols["confidence"] = sql.NullFloat64{}
	a, err = scanRecord(rowFor(t, cols))
	require.NoError(t, err)
	assert.Empty(t, a.SessionID)
	assert.Nil(t, a.Confidence)
	assert.Equal(t, "provider", a.ErrorKind)
	assert.Equal(t, "upstream 503", a.ErrorDetail)
}

func TestScanRecordRejectsShortRow(t *testing.T) {
	_, err := scanRecord(fakeRow{values: []any{"rec-1"}})
	assert.Error(t, err)
}

func TestInsertQueryMatchesSelectColumns(t *testing.T) {
	open := strings.Index(insertQuery, "(")
	end := strings.Index(insertQuery, ")")
	require.True(t, open >= 0 && end > open)
	assert.Equal(t, columnList(selectColumns), columnList(insertQuery[open+1:end]))

	rest := insertQuery[end:]
	vopen := strings.Index(rest, "(")
	vend := strings.Index(rest, ")")
	require.True(t, vopen >= 0 && vend > vopen)
	values := rest[vopen+1 : vend]
	assert.Equal(t, len(columnList(selectColumns)), strings.Count(values, "?"))
}
