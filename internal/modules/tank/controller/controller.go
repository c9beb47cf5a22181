package controller

import (
	"context"
	"net/http"
	"time"

	"sesoko-server/internal/modules/tank/service"
	"sesoko-server/internal/modules/tank/types"
)

// TankService is what the handlers need from the acquisition pipeline.
type TankService interface {
	Today() time.Time
	Location() *time.Location
	Acquire(ctx context.Context, day time.Time, tank string) types.Acquisition
	RenderMetric(ctx context.Context, day time.Time, tank string, metric types.Metric) (service.Image, error)
}

type TankController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type tankControllerImpl struct {
	service       TankService
	defaultMetric types.Metric
	defaultTank   string
}

func NewTankController(svc TankService, defaultMetric types.Metric, defaultTank string) TankController {
	return &tankControllerImpl{
		service:       svc,
		defaultMetric: defaultMetric,
		defaultTank:   defaultTank,
	}
}

func (c *tankControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET /sgr", c.handlePage)
	mux.HandleFunc("GET /sgr.png", c.handleDefaultChart)
	mux.HandleFunc("GET /plot/{kind}", c.handlePlot)
}
