package repository

import (
	"strings"
	"time"
)

const fileDateLayout = "20060102"

// FileName returns the daily file name for day, e.g. 20251125.csv.
func FileName(day time.Time) string {
	return day.Format(fileDateLayout) + ".csv"
}

// ResolveURL builds {base}[{tank}/]{YYYYMMDD}.csv.
func ResolveURL(base string, day time.Time, tank string) string {
	var b strings.Builder
	b.WriteString(base)
	if !strings.HasSuffix(base, "/") {
		b.WriteByte('/')
	}
	if tank != "" {
		b.WriteString(tank)
		b.WriteByte('/')
	}
	b.WriteString(FileName(day))
	return b.String()
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}
