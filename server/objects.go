package server

import (
	"github.com/sanguinariojoe/oclandgo/ocatomic"
	"github.com/sanguinariojoe/oclandgo/ocevent"
	"github.com/sanguinariojoe/oclandgo/runtime"
)

// Server-side handle descriptors. Each embeds refcount + ID to satisfy
// registry.Handle; fields beyond that mirror spec §3's per-kind
// attributes needed to service info queries and validate enqueues.

type refc struct {
	id uint64
	rc ocatomic.Int32
}

func (r *refc) HandleID() uint64         { return r.id }
func (r *refc) Refcount() *ocatomic.Int32 { return &r.rc }

type Platform struct {
	refc
	Info runtime.Platform
}

type Device struct {
	refc
	Info runtime.Device
	Plat uint64
}

type Context struct {
	refc
	Devices []uint64
}

type Queue struct {
	refc
	Context     uint64
	Device      uint64
	OutOfOrder  bool
	Profiling   bool
	pendingDone chan struct{} // closed/replaced as commands drain, used by Finish
}

type Mem struct {
	refc
	Context     uint64
	Size        int
	Flags       uint64
	ElemSize    int // image element size, 1 for plain buffers
	RowPitch    int
	SlicePitch  int
	Width, Height, Depth int // image dims; zero for buffers
	Parent      uint64       // sub-buffer parent, 0 if none
	Obj         *runtime.MemObject
}

type Sampler struct {
	refc
	Context      uint64
	Normalized   bool
	AddressMode  uint32
	FilterMode   uint32
}

type Program struct {
	refc
	Context uint64
	Source  string
	Built   bool
	Binary  []byte
	Compiled runtime.Program
}

type Kernel struct {
	refc
	Program uint64
	Name    string
	NumArgs int
	Args    []KernelArg
	fn      runtime.Kernel
}

type KernelArg struct {
	Set   bool
	Bytes []byte
	MemID uint64 // 0 unless this arg is a __global/__constant reference
}

// Event wraps ocevent.Event to additionally satisfy registry.Handle via
// embedding (ocevent.Event already provides HandleID/Refcount).
type Event = ocevent.Event
