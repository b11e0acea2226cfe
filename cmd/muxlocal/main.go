// muxlocal runs the multiplexer driver directly on a Linux board and logs
// every channel on a fixed period.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"analog-mux/config"
	"analog-mux/multiplexer"
	"analog-mux/simhal"

	"github.com/dikkadev/prettyslog"
)

type closableHAL interface {
	multiplexer.HAL
	io.Closer
}

func main() {
	logger := slog.New(prettyslog.NewPrettyslogHandler("mux",
		prettyslog.WithLevel(slog.LevelDebug),
	))
	slog.SetDefault(logger)

	configFile := flag.String("config", config.DefaultFile, "Path to the YAML config file")
	sim := flag.Bool("sim", false, "Use simulated hardware")
	once := flag.Bool("once", false, "Read every channel once and exit")
	flag.Parse()

	cfg := config.NewStore(*configFile, logger).Get()
	if *sim {
		cfg.Local.Sim = true
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	if err := run(cfg, *once, logger, sigs); err != nil {
		log.Fatal(err)
	}
}

// run owns the hardware for its whole lifetime, so every return path
// releases the select lines.
func run(cfg *config.Config, once bool, logger *slog.Logger, stop <-chan os.Signal) error {
	hal, err := openHAL(cfg.Local)
	if err != nil {
		return err
	}
	defer hal.Close()

	mux := multiplexer.NewAnalogMux(hal)
	defer mux.Close()
	if err := mux.Begin(multiplexer.Pin(cfg.Local.AnalogPin), pins(cfg.Local.SelectPins)...); err != nil {
		return err
	}
	logger.Info("multiplexer ready", "analogPin", mux.SignalPin(), "selectPins", mux.SelectCount(), "channels", mux.ChannelCount())

	if once {
		return poll(mux, cfg, logger)
	}

	ticker := time.NewTicker(cfg.Local.PollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := poll(mux, cfg, logger); err != nil {
				logger.Error("error polling multiplexer", "err", err)
			}
		case <-stop:
			logger.Info("interrupt signal received. shutting down")
			return nil
		}
	}
}

func pins(raw []uint32) []multiplexer.Pin {
	out := make([]multiplexer.Pin, len(raw))
	for i, p := range raw {
		out[i] = multiplexer.Pin(p)
	}
	return out
}

func poll(mux *multiplexer.AnalogMux, cfg *config.Config, logger *slog.Logger) error {
	values, err := mux.ReadAll(nil)
	if err != nil {
		return err
	}
	for ch, v := range values {
		logger.Info("sample", "channel", ch, "name", cfg.ChannelName(uint8(ch)), "raw", v)
	}
	return nil
}

type simCloser struct {
	*simhal.HAL
}

func (simCloser) Close() error { return nil }

// newSimHAL returns simulated hardware where channel N reads N*fullScale/(count-1).
func newSimHAL(local config.LocalConfig, fullScale uint16) closableHAL {
	h := simhal.New()
	selectPins := pins(local.SelectPins)
	count := uint(1) << len(selectPins)
	h.SetSource(simhal.MuxSource(selectPins, func(ch uint) multiplexer.Value {
		if count <= 1 {
			return multiplexer.Value(fullScale)
		}
		return multiplexer.Value(uint(fullScale) * ch / (count - 1))
	}))
	return simCloser{h}
}

func describe(local config.LocalConfig) string {
	if local.Sim {
		return "simulated"
	}
	return fmt.Sprintf("%s + %s", local.Chip, local.IIODevice)
}
