package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrUnknownMetric  = errors.New("unknown metric")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidTank    = errors.New("invalid tank")
)

// MaxTankLen bounds a tank code.
const MaxTankLen = 16

// Metric binds a route key to a CSV column and the axis label it is plotted with.
type Metric struct {
	Key    string
	Column string
	Label  string
}

var metrics = [...]Metric{
	{Key: "temp", Column: "TEMP", Label: "Temperature (°C)"},
	{Key: "do", Column: "DO", Label: "Dissolved Oxygen (mg/L)"},
	{Key: "ph", Column: "PH", Label: "pH"},
	{Key: "salt", Column: "SALT", Label: "Salinity (PSU)"},
}

// Metrics returns the plottable metrics in display order.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics[:])
	return out
}

func LookupMetric(key string) (Metric, error) {
	for _, m := range metrics {
		if m.Key == key {
			return m, nil
		}
	}
	return Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, key)
}

// ValidateTank checks a tank code. Codes become a URL path segment, so only letters,
// digits, '-' and '_' are accepted. The empty code selects the base directory.
func ValidateTank(s string) error {
	if len(s) > MaxTankLen {
		return fmt.Errorf("%w: must be at most %d characters", ErrInvalidTank, MaxTankLen)
	}
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return fmt.Errorf("%w: allowed characters are letters, digits, '-', '_'", ErrInvalidTank)
		}
	}
	return nil
}

// Table is one day of tank readings in source order.
type Table struct {
	Times   []time.Time
	Columns map[string][]float64
	// Order keeps the header order of the value columns.
	Order []string
}

func (t *Table) Len() int {
	return len(t.Times)
}

// Column returns the values of name. Names match exactly.
func (t *Table) Column(name string) ([]float64, error) {
	vals, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return vals, nil
}

// Span returns the first and last timestamp of the table.
func (t *Table) Span() (time.Time, time.Time, bool) {
	if len(t.Times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Times[0], t.Times[len(t.Times)-1], true
}

// Acquisition is the outcome of trying to obtain a reading table for one request:
// either real data or the reason it is unavailable.
type Acquisition struct {
	URL    string
	Table  *Table
	Reason error
}

func RealData(url string, table *Table) Acquisition {
	return Acquisition{URL: url, Table: table}
}

func Unavailable(url string, reason error) Acquisition {
	return Acquisition{URL: url, Reason: reason}
}

func (a Acquisition) OK() bool {
	return a.Reason == nil && a.Table != nil
}

// Snapshot is the most recent row of a table, as published to subscribers.
type Snapshot struct {
	Tank   string              `json:"tank"`
	Time   time.Time           `json:"time"`
	Source string              `json:"source"`
	Values map[string]*float64 `json:"values"`
}

// LatestSnapshot builds a snapshot from the last row. Missing cells are null.
func LatestSnapshot(tank string, a Acquisition) (Snapshot, bool) {
	if !a.OK() || a.Table.Len() == 0 {
		return Snapshot{}, false
	}
	i := a.Table.Len() - 1
	values := make(map[string]*float64, len(a.Table.Columns))
	for name, col := range a.Table.Columns {
		v := col[i]
		if math.IsNaN(v) {
			values[name] = nil
			continue
		}
		values[name] = &v
	}
	return Snapshot{
		Tank:   tank,
		Time:   a.Table.Times[i],
		Source: a.URL,
		Values: values,
	}, true
}
