package bulk

import (
	"context"
	"fmt"
	"net"

	"github.com/sanguinariojoe/oclandgo/cmn/nlog"
	"github.com/sanguinariojoe/oclandgo/ocevent"
	"github.com/sanguinariojoe/oclandgo/wire"
	"golang.org/x/sync/errgroup"
)

type Direction int

const (
	DirRead  Direction = iota // server -> client
	DirWrite                  // client -> server
)

// Region describes a (possibly rectangular) transfer: the peer always
// receives/sends a densely packed block sized region[0]*region[1]*region[2]
// (spec §4.7); HostRowPitch/HostSlicePitch describe how that dense block
// maps into the caller's own (possibly strided) host buffer.
type Region struct {
	Width, Height, Depth       int
	HostRowPitch, HostSlicePitch int // 0 means "tightly packed" (= Width / Width*Height)
}

func (r Region) dense() int { return r.Width * r.Height * r.Depth }

func (r Region) rowPitch() int {
	if r.HostRowPitch == 0 {
		return r.Width
	}
	return r.HostRowPitch
}

func (r Region) slicePitch() int {
	if r.HostSlicePitch == 0 {
		return r.rowPitch() * r.Height
	}
	return r.HostSlicePitch
}

// PackDense copies a pitched host buffer into a tightly packed block for
// wire transmission (the client side of a write, or flattening a read
// result isn't needed — reads unpack the other direction, see
// UnpackPitched).
func PackDense(host []byte, r Region) []byte {
	dense := make([]byte, r.dense())
	if r.HostRowPitch == 0 && r.HostSlicePitch == 0 {
		n := copy(dense, host)
		_ = n
		return dense
	}
	rp, sp := r.rowPitch(), r.slicePitch()
	for z := 0; z < r.Depth; z++ {
		for y := 0; y < r.Height; y++ {
			srcOff := z*sp + y*rp
			dstOff := (z*r.Height+y)*r.Width
			copy(dense[dstOff:dstOff+r.Width], host[srcOff:srcOff+r.Width])
		}
	}
	return dense
}

// UnpackPitched copies a tightly packed wire block into the caller's
// pitched host buffer (the client side of a read).
func UnpackPitched(dense []byte, host []byte, r Region) {
	if r.HostRowPitch == 0 && r.HostSlicePitch == 0 {
		copy(host, dense)
		return
	}
	rp, sp := r.rowPitch(), r.slicePitch()
	for z := 0; z < r.Depth; z++ {
		for y := 0; y < r.Height; y++ {
			dstOff := z*sp + y*rp
			srcOff := (z*r.Height+y)*r.Width
			copy(host[dstOff:dstOff+r.Width], dense[srcOff:srcOff+r.Width])
		}
	}
}

// DeviceIO abstracts the runtime calls a transfer worker drives, letting
// this package stay independent of the runtime package's concrete types.
type DeviceIO interface {
	Read(ctx context.Context, offset int, dst []byte) error
	Write(ctx context.Context, offset int, src []byte) error
}

// ServerSide runs the server-side worker of one non-blocking transfer
// (spec §4.7 steps 2-5): accept the ephemeral connection, wait on the
// submission's wait-list, move the bytes, finalize the event.
//
// Grounded on reb's worker-per-transfer pattern; ServerSide joins the
// worker via errgroup itself, logs the first error (if any) and moves the
// event to error.
func ServerSide(ln net.Listener, dir Direction, dio DeviceIO, offset, size int, waitList []*ocevent.Event, ev *ocevent.Event) {
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer ln.Close()
		nc, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("bulk: accept: %w", err)
		}
		defer nc.Close()
		c := wire.NewConn(nc)

		if err := ocevent.WaitList(ctx, waitList); err != nil {
			return fmt.Errorf("bulk: wait-list: %w", err)
		}
		ev.SetStatus(ocevent.Running)

		switch dir {
		case DirRead:
			buf := make([]byte, size)
			if err := dio.Read(ctx, offset, buf); err != nil {
				return fmt.Errorf("bulk: device read: %w", err)
			}
			if err := c.WriteDataPack(buf); err != nil {
				return fmt.Errorf("bulk: send payload: %w", err)
			}
			return c.Flush()
		case DirWrite:
			buf, err := c.ReadDataPack(size)
			if err != nil {
				return fmt.Errorf("bulk: recv payload: %w", err)
			}
			if err := dio.Write(ctx, offset, buf); err != nil {
				return fmt.Errorf("bulk: device write: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("bulk: unknown direction %d", dir)
		}
	})
	if err := g.Wait(); err != nil {
		nlog.Warningf("bulk: transfer for event %d failed: %v", ev.ID, err)
		ev.SetStatus(ocevent.Error)
		return
	}
	ev.SetStatus(ocevent.Complete)
}
