//go:build windows

package volume

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

// Sink sets endpoint volumes from a single COM initialised goroutine.
type Sink struct {
	logger   *slog.Logger
	requests chan request
	done     chan struct{}
	once     sync.Once

	mmde *wca.IMMDeviceEnumerator
}

func NewSink(logger *slog.Logger) (*Sink, error) {
	s := &Sink{
		logger:   logger,
		requests: make(chan request, 100),
		done:     make(chan struct{}),
	}

	ready := make(chan error, 1)
	go s.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return s, nil
}

// Set queues a volume change; level is clamped to 0..1. Failures of the
// change itself are logged by the sink goroutine.
func (s *Sink) Set(deviceID string, level float32) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.requests <- request{deviceID: deviceID, level: clamp(level)}:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

func (s *Sink) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *Sink) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		ready <- fmt.Errorf("CoInitializeEx failed: %w", err)
		return
	}
	defer ole.CoUninitialize()

	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &s.mmde); err != nil {
		ready <- fmt.Errorf("create IMMDeviceEnumerator: %w", err)
		return
	}
	defer s.mmde.Release()
	ready <- nil

	for {
		select {
		case r := <-s.requests:
			if err := s.setVolume(r.deviceID, r.level); err != nil {
				s.logger.Error("error setting volume", "deviceID", r.deviceID, "err", err)
			} else {
				s.logger.Debug("set volume", "deviceID", r.deviceID, "level", r.level)
			}
		case <-s.done:
			s.logger.Info("volume sink shutting down")
			return
		}
	}
}

func (s *Sink) setVolume(deviceID string, level float32) error {
	var mmd *wca.IMMDevice
	if err := s.mmde.GetDevice(deviceID, &mmd); err != nil {
		return fmt.Errorf("GetDevice failed: %w", err)
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		return fmt.Errorf("Activate IAudioEndpointVolume failed: %w", err)
	}
	defer aev.Release()

	if err := aev.SetMasterVolumeLevelScalar(level, nil); err != nil {
		return fmt.Errorf("SetMasterVolumeLevelScalar failed: %w", err)
	}
	return nil
}
