package charts

import (
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// DummyPoints is the length of the placeholder series.
const DummyPoints = 12

var ErrNoData = errors.New("no plottable points")

var (
	lineColor = drawing.ColorFromHex("1f77b4")
	gridColor = drawing.ColorFromHex("d9d9d9")
	gridStyle = chart.Style{StrokeColor: gridColor, StrokeWidth: 0.5}
	tightPad  = chart.Box{Top: 24, Left: 8, Right: 16, Bottom: 8}
)

// Series is one time-indexed metric to plot.
type Series struct {
	Title  string
	XLabel string
	YLabel string
	Times  []time.Time
	Values []float64
}

type Renderer struct {
	Width  int
	Height int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

// RenderSeries draws s as a thin line chart and writes it to w as PNG.
func (r *Renderer) RenderSeries(w io.Writer, s Series) error {
	c, err := r.seriesChart(s)
	if err != nil {
		return err
	}
	return c.Render(chart.PNG, w)
}

// RenderDummy writes the placeholder chart used when no real data is available.
func (r *Renderer) RenderDummy(w io.Writer) error {
	c := r.dummyChart()
	return c.Render(chart.PNG, w)
}

// DummySeries returns x = 1..12 and y evenly spaced over [0.5, 1.5].
func DummySeries() ([]float64, []float64) {
	xs := floats.Span(make([]float64, DummyPoints), 1, DummyPoints)
	ys := floats.Span(make([]float64, DummyPoints), 0.5, 1.5)
	return xs, ys
}

func (r *Renderer) seriesChart(s Series) (chart.Chart, error) {
	xs, ys := finitePoints(s.Times, s.Values)
	if len(xs) == 0 {
		return chart.Chart{}, ErrNoData
	}

	minT, maxT := xs[0], xs[0]
	for _, t := range xs[1:] {
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
	}

	xAxis := chart.XAxis{
		Name:           s.XLabel,
		ValueFormatter: timeValueFormatter(timeFormat(maxT.Sub(minT)), xs[0].Location()),
		GridMajorStyle: gridStyle,
		GridMinorStyle: gridStyle,
	}
	if !maxT.After(minT) {
		// go-chart refuses a zero-width range.
		xAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(minT.Add(-30 * time.Minute)),
			Max: chart.TimeToFloat64(minT.Add(30 * time.Minute)),
		}
	}

	yAxis := chart.YAxis{
		Name:           s.YLabel,
		GridMajorStyle: gridStyle,
		GridMinorStyle: gridStyle,
	}
	if lo, hi := floats.Min(ys), floats.Max(ys); lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	return chart.Chart{
		Title:      s.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: tightPad},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    s.YLabel,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 1,
				},
			},
		},
	}, nil
}

func (r *Renderer) dummyChart() chart.Chart {
	xs, ys := DummySeries()
	ticks := make([]chart.Tick, 0, len(xs))
	for _, x := range xs {
		ticks = append(ticks, chart.Tick{Value: x, Label: strconv.Itoa(int(x))})
	}
	return chart.Chart{
		Title:      "Dummy SGR",
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: tightPad},
		XAxis: chart.XAxis{
			Name:           "Month",
			Ticks:          ticks,
			Range:          &chart.ContinuousRange{Min: 0.5, Max: DummyPoints + 0.5},
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           "SGR (dummy)",
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "SGR (dummy)",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 1,
					DotColor:    lineColor,
					DotWidth:    3,
				},
			},
		},
	}
}

// finitePoints drops NaN and infinite samples, keeping source order.
func finitePoints(times []time.Time, values []float64) ([]time.Time, []float64) {
	n := min(len(times), len(values))
	xs := make([]time.Time, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, v)
	}
	return xs, ys
}

// timeValueFormatter labels ticks in loc. go-chart's own time formatters use time.Local.
func timeValueFormatter(layout string, loc *time.Location) chart.ValueFormatter {
	return func(v interface{}) string {
		switch tv := v.(type) {
		case float64:
			return chart.TimeFromFloat64(tv).In(loc).Format(layout)
		case time.Time:
			return tv.In(loc).Format(layout)
		case int64:
			return time.Unix(0, tv).In(loc).Format(layout)
		default:
			return ""
		}
	}
}

func timeFormat(span time.Duration) string {
	switch {
	case span > 72*time.Hour:
		return "01/02"
	case span > 24*time.Hour:
		return "01/02 15:04"
	default:
		return "15:04"
	}
}
