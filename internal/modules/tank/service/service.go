package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sesoko-server/internal/config"
	"sesoko-server/internal/modules/tank/charts"
	"sesoko-server/internal/modules/tank/repository"
	"sesoko-server/internal/modules/tank/types"
)

// Publisher receives the latest reading of every successful acquisition. Optional.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Renderer draws charts as PNG. *charts.Renderer implements it.
type Renderer interface {
	RenderSeries(w io.Writer, s charts.Series) error
	RenderDummy(w io.Writer) error
}

type Service struct {
	repository  repository.ReadingRepository
	renderer    Renderer
	publisher   Publisher
	policy      string
	topicPrefix string
	loc         *time.Location
	now         func() time.Time
}

func NewService(cfg config.Config, repo repository.ReadingRepository, renderer Renderer, publisher Publisher) *Service {
	return &Service{
		repository:  repo,
		renderer:    renderer,
		publisher:   publisher,
		policy:      cfg.FallbackPolicy,
		topicPrefix: cfg.MQTTTopicPrefix,
		loc:         cfg.DataLocation(),
		now:         time.Now,
	}
}

// Today is the current date in the data zone.
func (s *Service) Today() time.Time {
	return repository.Today(s.now(), s.loc)
}

// Location is the zone daily files are named in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Acquire fetches and parses the table for day and tank. It never fails: problems come back
// as an Unavailable acquisition carrying the reason.
func (s *Service) Acquire(ctx context.Context, day time.Time, tank string) types.Acquisition {
	url := s.repository.URLFor(day, tank)
	tbl, err := s.repository.GetTable(ctx, day, tank)
	if err != nil {
		slog.Warn("tank data unavailable", "url", url, "tank", tank, "error", err)
		return types.Unavailable(url, err)
	}
	acq := types.RealData(url, tbl)
	s.publishLatest(tank, acq)
	return acq
}

// Image is a rendered chart. Fallback is set when the placeholder series was drawn,
// and Reason then says why real data could not be used.
type Image struct {
	PNG      []byte
	Fallback bool
	Reason   error
	URL      string
}

// RenderMetric produces the chart for one metric. With the dummy policy any acquisition or
// render problem yields the placeholder chart; with the error policy it is returned as an error.
func (s *Service) RenderMetric(ctx context.Context, day time.Time, tank string, metric types.Metric) (Image, error) {
	acq := s.Acquire(ctx, day, tank)

	var series charts.Series
	if acq.OK() {
		var err error
		series, err = seriesFor(acq.Table, metric, chartTitle(day, tank))
		if err != nil {
			slog.Warn("tank metric unavailable", "url", acq.URL, "metric", metric.Key, "error", err)
			acq = types.Unavailable(acq.URL, err)
		}
	}

	var buf bytes.Buffer
	if acq.OK() {
		err := s.renderer.RenderSeries(&buf, series)
		if err == nil {
			return Image{PNG: buf.Bytes(), URL: acq.URL}, nil
		}
		buf.Reset()
		if errors.Is(err, charts.ErrNoData) {
			acq = types.Unavailable(acq.URL, fmt.Errorf("%s: %w", metric.Column, repository.ErrNoData))
		} else {
			slog.Error("tank chart render failed", "url", acq.URL, "metric", metric.Key, "error", err)
			acq = types.Unavailable(acq.URL, fmt.Errorf("render %s: %w", metric.Key, err))
		}
	}

	if s.policy == config.FallbackError {
		return Image{}, acq.Reason
	}
	if err := s.renderer.RenderDummy(&buf); err != nil {
		return Image{}, fmt.Errorf("render placeholder: %w", err)
	}
	return Image{PNG: buf.Bytes(), Fallback: true, Reason: acq.Reason, URL: acq.URL}, nil
}

func seriesFor(tbl *types.Table, metric types.Metric, title string) (charts.Series, error) {
	values, err := tbl.Column(metric.Column)
	if err != nil {
		return charts.Series{}, err
	}
	return charts.Series{
		Title:  title,
		XLabel: "Time",
		YLabel: metric.Label,
		Times:  tbl.Times,
		Values: values,
	}, nil
}

func chartTitle(day time.Time, tank string) string {
	if tank == "" {
		return repository.FileName(day)
	}
	return tank + "/" + repository.FileName(day)
}
