package repository

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("UTC+9", 9*3600)

func TestParseTable_wellFormed(t *testing.T) {
	in := "DATETIME,TEMP,DO,PH,SALT\n" +
		"2025-11-25 00:00:00,21.5,6.8,8.1,34.2\n" +
		"2025-11-25 00:10:00,21.4,6.7,8.1,34.3\n" +
		"2025-11-25 00:20:00,21.6,6.9,8.0,34.1\n"

	tbl, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"TEMP", "DO", "PH", "SALT"}, tbl.Order)
	assert.Equal(t, time.Date(2025, 11, 25, 0, 10, 0, 0, jst), tbl.Times[1])

	do, err := tbl.Column("DO")
	require.NoError(t, err)
	assert.Equal(t, []float64{6.8, 6.7, 6.9}, do)
}

func TestParseTable_keepsSourceOrder(t *testing.T) {
	in := "DATETIME,TEMP\n" +
		"2025-11-25 02:00:00,1\n" +
		"2025-11-25 01:00:00,2\n"

	tbl, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	require.NoError(t, err)
	assert.True(t, tbl.Times[0].After(tbl.Times[1]))
}

func TestParseTable_timestampLayouts(t *testing.T) {
	want := time.Date(2025, 11, 25, 9, 5, 0, 0, jst)
	for _, cell := range []string{
		"2025-11-25 09:05:00",
		"2025/11/25 09:05:00",
		"2025-11-25T09:05:00",
		"2025-11-25T09:05:00+09:00",
		"2025-11-25 09:05",
		"2025/11/25 09:05",
		"2025/11/25 9:05",
		"2025-11-25 09:05:00+09:00",
		"2025-11-25 00:05:00Z",
		"2025-11-25 09:05:00+0900",
		"2025-11-25 09:05+09:00",
		"2025-11-25 09:05:00.000",
	} {
		t.Run(cell, func(t *testing.T) {
			tbl, err := ParseTable(strings.NewReader("DATETIME,TEMP\n"+cell+",20\n"), TimeColumn, jst)
			require.NoError(t, err)
			assert.True(t, want.Equal(tbl.Times[0]), "got %v", tbl.Times[0])
		})
	}
}

func TestParseTable_dateOnlyTimestamps(t *testing.T) {
	want := time.Date(2025, 11, 25, 0, 0, 0, 0, jst)
	for _, cell := range []string{"2025-11-25", "2025/11/25", "2025/11/5"} {
		t.Run(cell, func(t *testing.T) {
			tbl, err := ParseTable(strings.NewReader("DATETIME,TEMP\n"+cell+",20\n"), TimeColumn, jst)
			require.NoError(t, err)
			got := tbl.Times[0]
			assert.Equal(t, want.Year(), got.Year())
			assert.Equal(t, want.Month(), got.Month())
			assert.Zero(t, got.Hour())
			assert.Equal(t, jst, got.Location())
		})
	}
}

func TestParseTable_mixedLayoutsKeepWholeDay(t *testing.T) {
	in := "DATETIME,TEMP\n" +
		"2025-11-25 00:00:00,21.5\n" +
		"2025-11-25 00:10:00+09:00,21.4\n" +
		"2025-11-25,21.6\n"
	tbl, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.True(t, tbl.Times[1].Equal(time.Date(2025, 11, 25, 0, 10, 0, 0, jst)))
}

func TestParseTable_missingTimeColumn(t *testing.T) {
	_, err := ParseTable(strings.NewReader("TIME,TEMP\n2025-11-25 00:00:00,21\n"), TimeColumn, jst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, TimeColumn, se.Column)
}

func TestParseTable_emptyPayload(t *testing.T) {
	_, err := ParseTable(strings.NewReader(""), TimeColumn, jst)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestParseTable_badTimestampIsFatal(t *testing.T) {
	in := "DATETIME,TEMP\n2025-11-25 00:00:00,21\nyesterday,22\n"
	_, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var te *TimestampError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 3, te.Row)
	assert.Equal(t, "yesterday", te.Value)
}

func TestParseTable_toleratesRaggedRows(t *testing.T) {
	in := "\ufeffDATETIME, TEMP ,DO\n" +
		"2025-11-25 00:00:00,21.5\n" +
		"2025-11-25 00:10:00,n/a,6.7,extra\n" +
		",,\n" +
		"2025-11-25 00:20:00,,6.9\n"

	tbl, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	temp, err := tbl.Column("TEMP")
	require.NoError(t, err)
	assert.Equal(t, 21.5, temp[0])
	assert.True(t, math.IsNaN(temp[1]))
	assert.True(t, math.IsNaN(temp[2]))

	do, err := tbl.Column("DO")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(do[0]))
	assert.Equal(t, 6.9, do[2])
}

func TestParseTable_headerOnly(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("DATETIME,TEMP\n"), TimeColumn, jst)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	_, err = tbl.Column("TEMP")
	assert.NoError(t, err)
}

func TestParseTable_brokenQuoting(t *testing.T) {
	in := "DATETIME,TEMP\n\"2025-11-25 00:00:00,21\n"
	_, err := ParseTable(strings.NewReader(in), TimeColumn, jst)
	assert.ErrorIs(t, err, ErrParse)
}
