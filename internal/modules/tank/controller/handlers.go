package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"sesoko-server/internal/modules/tank/service"
	"sesoko-server/internal/modules/tank/types"
	"sesoko-server/internal/modules/tank/views"
	"sesoko-server/internal/utils"
)

const indexMessage = "Sesoko tank data app is running."

func (c *tankControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	utils.WriteText(w, http.StatusOK, indexMessage)
}

func (c *tankControllerImpl) handleDefaultChart(w http.ResponseWriter, r *http.Request) {
	c.writeChart(w, r, c.defaultMetric)
}

func (c *tankControllerImpl) handlePlot(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	metric, err := types.LookupMetric(kind)
	if err != nil {
		utils.WriteText(w, http.StatusNotFound, "unknown plot kind: "+kind)
		return
	}
	c.writeChart(w, r, metric)
}

func (c *tankControllerImpl) writeChart(w http.ResponseWriter, r *http.Request, metric types.Metric) {
	day, err := parseDay(r, c.service.Today(), c.service.Location())
	if err != nil {
		utils.WriteText(w, http.StatusBadRequest, err.Error())
		return
	}
	tank, err := parseTank(r, c.defaultTank)
	if err != nil {
		utils.WriteText(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := c.service.RenderMetric(r.Context(), day, tank, metric)
	if err != nil {
		slog.Error("chart: render failed", "metric", metric.Key, "tank", tank, "error", err)
		utils.WriteText(w, http.StatusInternalServerError, "failed to load tank data: "+err.Error())
		return
	}
	if img.Fallback {
		w.Header().Set("X-Chart-Fallback", "dummy")
	}
	w.Header().Set("Cache-Control", "no-store")
	utils.WritePNG(w, img.PNG)
}

func (c *tankControllerImpl) handlePage(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r, c.service.Today(), c.service.Location())
	if err != nil {
		utils.WriteText(w, http.StatusBadRequest, err.Error())
		return
	}
	tank, err := parseTank(r, c.defaultTank)
	if err != nil {
		utils.WriteText(w, http.StatusBadRequest, err.Error())
		return
	}

	q := imageQuery(day, tank)
	data := &views.PageData{
		Date:      day.Format("2006-01-02"),
		Tank:      tank,
		MainImage: "/sgr.png" + q,
	}
	for _, m := range types.Metrics() {
		data.Plots = append(data.Plots, views.PlotImage{Label: m.Label, Src: "/plot/" + m.Key + q})
	}

	acq := c.service.Acquire(r.Context(), day, tank)
	if acq.OK() {
		for _, s := range service.Summarize(acq.Table) {
			data.Summaries = append(data.Summaries, views.SummaryRow{
				Label:     s.Metric.Label,
				Available: s.Available,
				Count:     s.Count,
				Min:       s.Min,
				Mean:      s.Mean,
				Max:       s.Max,
			})
		}
	} else {
		data.Unavailable = acq.Reason.Error()
	}

	var buf bytes.Buffer
	if err := views.RenderPage(&buf, data); err != nil {
		slog.Error("sgr page render failed", "error", err)
		utils.WriteText(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("sgr page: write response failed", "error", err)
	}
}
