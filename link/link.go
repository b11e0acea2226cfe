// Package link carries protocol frames over a serial connection to the
// mux firmware.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"analog-mux/protocol"

	"go.bug.st/serial"
)

var ErrClosed = errors.New("link: closed")

type SerialConfig struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// Open opens a serial port by name.
func Open(portName string, cfg SerialConfig) (serial.Port, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	return port, nil
}

type Link struct {
	rw     io.ReadWriteCloser
	logger *slog.Logger

	recv      chan protocol.Frame
	writeLock sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
	err       error
}

// New starts reading frames from rw until ctx is cancelled, rw fails or
// Close is called.
func New(ctx context.Context, rw io.ReadWriteCloser, logger *slog.Logger) *Link {
	l := &Link{
		rw:     rw,
		logger: logger,
		recv:   make(chan protocol.Frame, 100),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.readLoop(ctx)
	return l
}

// ReceiveChannel delivers decoded frames. It is closed when the reader stops.
func (l *Link) ReceiveChannel() <-chan protocol.Frame {
	return l.recv
}

func (l *Link) Send(f protocol.Frame) error {
	select {
	case <-l.closed:
		return ErrClosed
	case <-l.done:
		return ErrClosed
	default:
	}

	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	_, err := l.rw.Write(protocol.Marshal(f))
	return err
}

// Err returns the error that stopped the reader, if any.
func (l *Link) Err() error {
	<-l.done
	return l.err
}

func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.rw.Close()
	})
	return err
}

func (l *Link) readLoop(ctx context.Context) {
	defer close(l.done)
	defer close(l.recv)

	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-l.done:
		}
	}()

	buffer := make([]byte, 0, 4*protocol.FRAME_SIZE)
	chunk := make([]byte, 64)
	for {
		n, err := l.rw.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
			buffer = l.drain(ctx, buffer)
		}
		if l.stopped(ctx) {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}
			return
		}
	}
}

// stopped reports whether the reader was asked to stop, by ctx or Close.
func (l *Link) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

// drain decodes every complete frame in buffer and returns the unconsumed tail.
func (l *Link) drain(ctx context.Context, buffer []byte) []byte {
	for len(buffer) >= protocol.FRAME_SIZE {
		if !protocol.IsFrameAtStart(buffer) {
			buffer = buffer[1:]
			continue
		}

		f, ok := protocol.Unmarshal(buffer[:protocol.FRAME_SIZE])
		if !ok {
			l.logger.Debug("dropping corrupt frame", "data", fmt.Sprintf("%x", buffer[:protocol.FRAME_SIZE]))
			buffer = buffer[1:]
			continue
		}

		select {
		case l.recv <- f:
		case <-ctx.Done():
			return buffer[:0]
		case <-l.closed:
			return buffer[:0]
		}
		buffer = buffer[protocol.FRAME_SIZE:]
	}
	return buffer
}
