package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"sesoko-server/internal/modules/tank/types"
)

const TimeColumn = "DATETIME"

var (
	ErrSchema = errors.New("schema error")
	ErrParse  = errors.New("parse error")
	ErrNoData = errors.New("no data")
)

// SchemaError reports a required column missing from the header.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// TimestampError reports a timestamp cell that matches none of the accepted layouts.
// Row is 1-based and counts the header.
type TimestampError struct {
	Row   int
	Value string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q", e.Row, TimeColumn, e.Value)
}

func (e *TimestampError) Is(target error) bool {
	return target == ErrParse
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02T15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04Z07:00",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTable reads a daily CSV. The header must carry timeColumn; every other column is
// read as float64 with NaN for blank or non-numeric cells. Rows keep their source order.
func ParseTable(r io.Reader, timeColumn string, loc *time.Location) (*types.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Column: timeColumn}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrParse, err)
	}

	timeIdx := -1
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		names[i] = h
		if h == timeColumn && timeIdx < 0 {
			timeIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, &SchemaError{Column: timeColumn}
	}

	tbl := &types.Table{Columns: make(map[string][]float64, len(names)-1)}
	valueIdx := make([]int, 0, len(names)-1)
	for i, n := range names {
		if i == timeIdx || n == "" {
			continue
		}
		if _, dup := tbl.Columns[n]; dup {
			continue
		}
		tbl.Columns[n] = nil
		tbl.Order = append(tbl.Order, n)
		valueIdx = append(valueIdx, i)
	}

	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrParse, row, err)
		}
		if timeIdx >= len(rec) {
			continue
		}
		cell := strings.TrimSpace(rec[timeIdx])
		if cell == "" {
			continue
		}
		ts, ok := parseTimestamp(cell, loc)
		if !ok {
			return nil, &TimestampError{Row: row, Value: cell}
		}
		tbl.Times = append(tbl.Times, ts)
		for _, i := range valueIdx {
			v := math.NaN()
			if i < len(rec) {
				if f, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
					v = f
				}
			}
			tbl.Columns[names[i]] = append(tbl.Columns[names[i]], v)
		}
	}

	return tbl, nil
}
