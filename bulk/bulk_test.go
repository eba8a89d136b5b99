package bulk_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sanguinariojoe/oclandgo/bulk"
	"github.com/sanguinariojoe/oclandgo/ocevent"
)

func TestPackDenseTightlyPacked(t *testing.T) {
	host := []byte{1, 2, 3, 4, 5, 6}
	r := bulk.Region{Width: 2, Height: 3, Depth: 1}
	dense := bulk.PackDense(host, r)
	if !bytes.Equal(dense, host) {
		t.Fatalf("got %v, want %v", dense, host)
	}
}

func TestPackUnpackRoundTripWithPitch(t *testing.T) {
	// 2x2 region living inside a row-pitch-4 host buffer.
	host := []byte{
		1, 2, 0, 0,
		3, 4, 0, 0,
	}
	r := bulk.Region{Width: 2, Height: 2, Depth: 1, HostRowPitch: 4}
	dense := bulk.PackDense(host, r)
	want := []byte{1, 2, 3, 4}
	if !bytes.Equal(dense, want) {
		t.Fatalf("PackDense: got %v, want %v", dense, want)
	}

	out := make([]byte, len(host))
	bulk.UnpackPitched(dense, out, r)
	if !bytes.Equal(out, host) {
		t.Fatalf("UnpackPitched round trip: got %v, want %v", out, host)
	}
}

func TestAllocatorListenFindsFreePort(t *testing.T) {
	a := bulk.NewAllocator(51100, 51120)
	ln, port, err := a.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	if port < 51100 || port > 51120 {
		t.Fatalf("port %d outside requested range", port)
	}
}

type memDevice struct{ buf []byte }

func (m *memDevice) Read(_ context.Context, offset int, dst []byte) error {
	copy(dst, m.buf[offset:offset+len(dst)])
	return nil
}

func (m *memDevice) Write(_ context.Context, offset int, src []byte) error {
	copy(m.buf[offset:offset+len(src)], src)
	return nil
}

func TestServerSideReadEndToEnd(t *testing.T) {
	a := bulk.NewAllocator(51130, 51150)
	ln, port, err := a.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	want := []byte("0123456789abcdef")
	dev := &memDevice{buf: append([]byte(nil), want...)}
	ev := ocevent.New(1, 10, 20, 0)

	go bulk.ServerSide(ln, bulk.DirRead, dev, 0, len(want), nil, ev)

	c, err := bulk.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	got := make([]byte, len(want))
	if err := bulk.ClientRead(c, got, bulk.Region{Width: len(want), Height: 1, Depth: 1}); err != nil {
		t.Fatalf("ClientRead: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}

	if err := ev.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ev.Status() != ocevent.Complete {
		t.Fatalf("event status = %v, want complete", ev.Status())
	}
}

func TestServerSideWriteEndToEnd(t *testing.T) {
	a := bulk.NewAllocator(51160, 51180)
	ln, port, err := a.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	src := []byte("the quick brown fox")
	dev := &memDevice{buf: make([]byte, len(src))}
	ev := ocevent.New(2, 10, 20, 0)

	go bulk.ServerSide(ln, bulk.DirWrite, dev, 0, len(src), nil, ev)

	c, err := bulk.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := bulk.ClientWrite(c, src, bulk.Region{Width: len(src), Height: 1, Depth: 1}); err != nil {
		t.Fatalf("ClientWrite: %v", err)
	}

	if err := ev.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !bytes.Equal(dev.buf, src) {
		t.Fatalf("device buffer = %q, want %q", dev.buf, src)
	}
}
