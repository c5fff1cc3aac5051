package main

import (
	"fmt"
	"log/slog"
	"time"

	"walksim/pkg/config"
	"walksim/pkg/sink"
	"walksim/pkg/sink/mocksink"
	"walksim/pkg/sink/tcpsink"
	"walksim/pkg/sink/wssink"
	"walksim/pkg/tracker"
)

func newSinkClient(cfg *config.Config, tr *tracker.Tracker) (sink.Client, error) {
	rc := cfg.Receiver

	switch rc.Provider {
	case "mock":
		slog.Info("Receiver: Mock")
		m := mocksink.NewClient(mocksink.Config{})
		m.SetTracker(tr)
		return m, nil
	case "tcp":
		slog.Info("Receiver: TCP", "device", rc.DeviceID)
		return tcpsink.NewClient(tcpsink.Config{
			DeviceID:     rc.DeviceID,
			DialTimeout:  time.Duration(rc.DialTimeout),
			WriteTimeout: time.Duration(rc.WriteTimeout),
		}, tr), nil
	case "websocket", "":
		slog.Info("Receiver: WebSocket (Default)", "path", rc.Path)
		return wssink.NewClient(wssink.Config{
			Path:         rc.Path,
			DialTimeout:  time.Duration(rc.DialTimeout),
			WriteTimeout: time.Duration(rc.WriteTimeout),
		}, tr), nil
	default:
		return nil, fmt.Errorf("%w: unknown receiver provider %q", config.ErrInvalidConfig, rc.Provider)
	}
}
