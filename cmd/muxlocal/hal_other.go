//go:build !linux

package main

import (
	"errors"
	"log/slog"

	"analog-mux/config"
)

var openHAL = openPlatformHAL

func openPlatformHAL(local config.LocalConfig) (closableHAL, error) {
	slog.Info("opening hardware", "backend", describe(local))
	if local.Sim {
		return newSimHAL(local, config.DefaultFullScale), nil
	}
	return nil, errors.New("hardware access needs linux, use -sim")
}
