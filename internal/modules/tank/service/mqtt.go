package service

import (
	"encoding/json"
	"log/slog"

	"sesoko-server/internal/modules/tank/types"
)

const defaultTankSegment = "default"

// snapshotTopic is {prefix}/{tank}/latest.
func (s *Service) snapshotTopic(tank string) string {
	if tank == "" {
		tank = defaultTankSegment
	}
	return s.topicPrefix + "/" + tank + "/latest"
}

// publishLatest sends the last row of a real table. Failures are logged and never reach the request.
func (s *Service) publishLatest(tank string, acq types.Acquisition) {
	if s.publisher == nil {
		return
	}
	snap, ok := types.LatestSnapshot(tank, acq)
	if !ok {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Error("encode tank snapshot", "tank", tank, "error", err)
		return
	}
	topic := s.snapshotTopic(tank)
	if err := s.publisher.Publish(topic, payload); err != nil {
		slog.Warn("publish tank snapshot failed", "topic", topic, "error", err)
		return
	}
	slog.Debug("published tank snapshot", "topic", topic, "time", snap.Time)
}
