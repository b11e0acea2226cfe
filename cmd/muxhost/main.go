package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"analog-mux/config"
	"analog-mux/link"
	"analog-mux/protocol"
	"analog-mux/volume"

	"github.com/dikkadev/prettyslog"
)

func main() {
	logger := slog.New(prettyslog.NewPrettyslogHandler("mux",
		prettyslog.WithLevel(slog.LevelDebug),
	))
	slog.SetDefault(logger)

	configFile := flag.String("config", config.DefaultFile, "Path to the YAML config file")
	portName := flag.String("port", "", "Serial port name (e.g., COM3 or /dev/ttyACM0)")
	listPorts := flag.Bool("list", false, "List serial ports and exit")
	listUSB := flag.Bool("usb", false, "List USB devices and exit")
	flag.Parse()

	if *listPorts {
		if err := printSerialPorts(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if *listUSB {
		if err := printUSBDevices(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	store := config.NewStore(*configFile, logger)
	if *portName != "" {
		store.Update(func(c *config.Config) { c.PortName = *portName })
	}

	cfg := store.Get()
	if cfg.PortName == "" {
		log.Fatal("No serial port specified. Use the -port flag to specify the serial port.")
	}

	shutdownChan := make(chan struct{})
	go store.Reloader(shutdownChan)

	port, err := link.Open(cfg.PortName, link.SerialConfig{
		BaudRate:    cfg.BaudRate,
		ReadTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := link.New(ctx, port, logger)
	defer l.Close()

	sink, err := volume.NewSink(logger)
	if err != nil {
		if !errors.Is(err, volume.ErrUnsupported) {
			slog.Error("volume sink unavailable", "err", err)
		}
		sink = nil
	} else {
		defer sink.Close()
	}

	h := &handler{store: store, sink: sink, tracker: volume.NewTracker(), logger: logger}
	go func() {
		for f := range l.ReceiveChannel() {
			h.handleFrame(f)
		}
		if err := l.Err(); err != nil {
			slog.Error("serial link stopped", "err", err)
		}
	}()

	if cfg.ReadPeriod > 0 {
		go readRequester(l, store, shutdownChan)
	}

	// Wait for interrupt signal to gracefully shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	slog.Info("application is running. press Ctrl+C to exit", "port", cfg.PortName)
	<-sigs
	slog.Info("interrupt signal received. initiating shutdown")

	close(shutdownChan)
	cancel()
	l.Err()
	slog.Info("application terminated gracefully")
}

type handler struct {
	store   *config.Store
	sink    *volume.Sink
	tracker *volume.Tracker
	logger  *slog.Logger
}

func (h *handler) handleFrame(f protocol.Frame) {
	cfg := h.store.Get()

	switch f.Type {
	case protocol.FRAME_TYPE_INFO:
		h.logger.Info("device announced", "selectPins", f.Channel, "channels", 1<<f.Channel, "analogPin", f.Value)
	case protocol.FRAME_TYPE_SAMPLE:
		name := cfg.ChannelName(f.Channel)
		h.logger.Debug("sample", "channel", f.Channel, "name", name, "raw", f.Value)

		cc := cfg.Channel(f.Channel)
		if cc == nil || cc.DeviceID == "" || h.sink == nil {
			return
		}
		percent := volume.Percent(f.Value, cfg.FullScale)
		if h.tracker.Changed(cc.DeviceID, percent) {
			if err := h.sink.Set(cc.DeviceID, float32(percent)/100.0); err != nil {
				h.logger.Error("error queueing volume change", "name", name, "deviceID", cc.DeviceID, "err", err)
				return
			}
			h.logger.Info("set volume", "name", name, "state", percent, "deviceID", cc.DeviceID)
		}
	default:
		h.logger.Warn("unexpected frame", "frame", f.String())
	}
}

// readRequester asks the device for every configured channel each ReadPeriod.
func readRequester(l *link.Link, store *config.Store, shutdownChan <-chan struct{}) {
	ticker := time.NewTicker(store.Get().ReadPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range store.Get().Channels {
				if err := l.Send(*protocol.NewRead(c.Channel)); err != nil {
					slog.Error("error sending read request", "channel", c.Channel, "err", err)
					return
				}
			}
		case <-shutdownChan:
			slog.Info("read requester shutting down")
			return
		}
	}
}
