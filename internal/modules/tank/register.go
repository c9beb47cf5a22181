package tank

import (
	"fmt"
	"net/http"

	"sesoko-server/internal/config"
	"sesoko-server/internal/modules/tank/charts"
	"sesoko-server/internal/modules/tank/controller"
	"sesoko-server/internal/modules/tank/repository"
	"sesoko-server/internal/modules/tank/service"
	"sesoko-server/internal/modules/tank/types"
)

// RegisterFeature wires the tank pipeline onto mux. publisher may be nil.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, publisher service.Publisher) error {
	metric, err := types.LookupMetric(cfg.DefaultMetric)
	if err != nil {
		return fmt.Errorf("default metric: %w", err)
	}
	fetcher := repository.NewHTTPFetcher(cfg.FetchTimeout, cfg.FetchMaxBytes)
	tankRepository := repository.NewRepository(cfg.CSVBaseURL, fetcher, cfg.DataLocation())
	renderer := charts.NewRenderer(cfg.ChartWidth, cfg.ChartHeight)
	tankService := service.NewService(cfg, tankRepository, renderer, publisher)
	tankController := controller.NewTankController(tankService, metric, cfg.DefaultTank)
	tankController.RegisterRoutes(mux)
	return nil
}
