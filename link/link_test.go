package link

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"analog-mux/protocol"
)

func newTestLink(t *testing.T) (*Link, net.Conn, context.CancelFunc) {
	t.Helper()
	a, b := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := New(ctx, a, logger)
	t.Cleanup(func() {
		cancel()
		b.Close()
	})
	return l, b, cancel
}

func receive(t *testing.T, l *Link) protocol.Frame {
	t.Helper()
	select {
	case f, ok := <-l.ReceiveChannel():
		if !ok {
			t.Fatal("Receive channel closed")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for frame")
	}
	return protocol.Frame{}
}

func TestReceiveResyncs(t *testing.T) {
	l, remote, _ := newTestLink(t)

	corrupt := protocol.Marshal(*protocol.NewSample(1, 1))
	corrupt[6] ^= 0xFF

	var stream []byte
	stream = append(stream, 0x00, 0x42, protocol.SIGNATURE)
	stream = append(stream, protocol.Marshal(*protocol.NewSample(3, 812))...)
	stream = append(stream, corrupt...)
	stream = append(stream, protocol.Marshal(*protocol.NewInfo(4, 26))...)

	go remote.Write(stream)

	if f := receive(t, l); f != *protocol.NewSample(3, 812) {
		t.Errorf("Unexpected first frame %s", f.String())
	}
	if f := receive(t, l); f != *protocol.NewInfo(4, 26) {
		t.Errorf("Unexpected second frame %s", f.String())
	}
}

func TestReceiveSplitWrites(t *testing.T) {
	l, remote, _ := newTestLink(t)

	data := protocol.Marshal(*protocol.NewSample(7, 4095))
	go func() {
		remote.Write(data[:3])
		remote.Write(data[3:])
	}()

	if f := receive(t, l); f.Channel != 7 || f.Value != 4095 {
		t.Errorf("Unexpected frame %s", f.String())
	}
}

func TestSend(t *testing.T) {
	l, remote, _ := newTestLink(t)

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, protocol.FRAME_SIZE)
		if _, err := io.ReadFull(remote, buf); err == nil {
			got <- buf
		}
	}()

	if err := l.Send(*protocol.NewRead(5)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case data := <-got:
		f, ok := protocol.Unmarshal(data)
		if !ok || f != *protocol.NewRead(5) {
			t.Errorf("Unexpected frame on the wire: %x", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for write")
	}
}

func TestCancelStopsReader(t *testing.T) {
	l, _, cancel := newTestLink(t)
	cancel()

	if err := l.Err(); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
	if _, ok := <-l.ReceiveChannel(); ok {
		t.Error("Expected receive channel to be closed")
	}
	if err := l.Send(*protocol.NewRead(0)); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestCloseWithFullReceiveChannel(t *testing.T) {
	l, remote, _ := newTestLink(t)

	// more frames than the receive channel buffers, none of them consumed
	go func() {
		for i := 0; i < 150; i++ {
			if _, err := remote.Write(protocol.Marshal(*protocol.NewSample(uint8(i), uint16(i)))); err != nil {
				return
			}
		}
	}()

	deadline := time.After(2 * time.Second)
	for len(l.ReceiveChannel()) < cap(l.ReceiveChannel()) {
		select {
		case <-deadline:
			t.Fatal("Timed out filling the receive channel")
		case <-time.After(time.Millisecond):
		}
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stopped := make(chan error, 1)
	go func() { stopped <- l.Err() }()
	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Expected clean shutdown after Close, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Reader still blocked after Close")
	}
	if err := l.Send(*protocol.NewRead(0)); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
