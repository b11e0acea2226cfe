//go:build linux

package main

import (
	"log/slog"

	"analog-mux/config"
	"analog-mux/linuxhal"
)

var openHAL = openPlatformHAL

func openPlatformHAL(local config.LocalConfig) (closableHAL, error) {
	slog.Info("opening hardware", "backend", describe(local))
	if local.Sim {
		return newSimHAL(local, config.DefaultFullScale), nil
	}
	return linuxhal.New(local.Chip, linuxhal.NewIIOADC(local.IIODevice)), nil
}
