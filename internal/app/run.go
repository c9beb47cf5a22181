package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sesoko-server/internal/config"
	httpapi "sesoko-server/internal/httpapi"
	tank "sesoko-server/internal/modules/tank"
	"sesoko-server/internal/modules/tank/service"
	tankviews "sesoko-server/internal/modules/tank/views"
	"sesoko-server/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"csvBaseURL", cfg.CSVBaseURL,
		"fetchTimeout", cfg.FetchTimeout,
		"fetchMaxBytes", cfg.FetchMaxBytes,
		"dataUTCOffsetHours", cfg.DataUTCOffsetHours,
		"defaultTank", cfg.DefaultTank,
		"defaultMetric", cfg.DefaultMetric,
		"fallbackPolicy", cfg.FallbackPolicy,
		"chartSize", [2]int{cfg.ChartWidth, cfg.ChartHeight},
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
	)

	if err := tankviews.LoadTemplates(); err != nil {
		return err
	}

	var (
		publisher *mqtt.Publisher
		health    httpapi.ConnectionChecker
		snapshots service.Publisher
	)
	if cfg.MQTTEnabled() {
		publisher = mqtt.NewPublisher(cfg, slog.Default())
		health = publisher
		snapshots = publisher

		// Short timeout so a missing broker does not hold up startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing, client keeps retrying)", "error", err)
		}
	} else {
		slog.Info("mqtt disabled (MQTT_BROKER not set)")
	}

	mux := httpapi.NewMux(health)
	if err := tank.RegisterFeature(mux, cfg, snapshots); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if publisher != nil {
		slog.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
