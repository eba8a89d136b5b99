package client

import (
	"github.com/sanguinariojoe/oclandgo/ocatomic"
	"github.com/sanguinariojoe/oclandgo/ocevent"
)

// Every descriptor pairs a client-local identity with the server's remote
// identity (spec §3: "on the client, a paired remote identity used
// whenever the handle is mentioned in an outgoing frame") and keeps enough
// locally cached state to answer info queries without a round trip (spec
// §4.5 "local info shortcuts").

type Platform struct {
	ID, RemoteID       uint64
	Name, Vendor, Version, Profile string
}

type Device struct {
	ID, RemoteID uint64
	Platform     uint64
	Name         string
	MaxWGSize    int
	GlobalMem    uint64
	ComputeUnits int
	refcount     ocatomic.Int32
}

func (o *Device) Refcount() *ocatomic.Int32 { return &o.refcount }

type Context struct {
	ID, RemoteID uint64
	Devices      []uint64
	refcount     ocatomic.Int32
}

func (o *Context) Refcount() *ocatomic.Int32 { return &o.refcount }

type Queue struct {
	ID, RemoteID uint64
	Context      uint64
	Device       uint64
	refcount     ocatomic.Int32
}

func (o *Queue) Refcount() *ocatomic.Int32 { return &o.refcount }

type Mem struct {
	ID, RemoteID uint64
	Context      uint64
	Size         int
	Flags        uint64
	Parent       uint64
	refcount     ocatomic.Int32
}

func (o *Mem) Refcount() *ocatomic.Int32 { return &o.refcount }

type Sampler struct {
	ID, RemoteID             uint64
	Context                  uint64
	Normalized               bool
	AddressMode, FilterMode  uint32
	refcount                 ocatomic.Int32
}

func (o *Sampler) Refcount() *ocatomic.Int32 { return &o.refcount }

type Program struct {
	ID, RemoteID uint64
	Context      uint64
	Source       string
	Built        bool
	refcount     ocatomic.Int32
}

func (o *Program) Refcount() *ocatomic.Int32 { return &o.refcount }

// KernelArg mirrors spec §3's per-index "{bytes, value-bytes, is-set}"
// kernel-argument record, plus the recognised-memory-reference flag that
// drives remote-identity substitution at transmission time.
type KernelArg struct {
	Set   bool
	Bytes []byte
	MemID uint64 // client-local Mem.ID if this argument is a buffer reference
}

type Kernel struct {
	ID, RemoteID uint64
	Program      uint64
	Name         string
	NumArgs      int
	Args         []KernelArg
	refcount     ocatomic.Int32
}

func (o *Kernel) Refcount() *ocatomic.Int32 { return &o.refcount }

// Event wraps ocevent.Event, adding the RemoteID the server assigned (spec
// §3: the event also carries "the underlying runtime event handle on the
// server" — here, the server's own event ID, which is what wait/release
// commands must transmit).
type Event struct {
	*ocevent.Event
	RemoteID uint64
}

// mapEntry tracks an in-flight client-side map synthesised out of a plain
// read/write (spec §4.8: "map buffer ... synthesised entirely on the
// client"). Kept so Unmap knows whether to flush a write-back.
type mapEntry struct {
	mem        uint64
	hostBuf    []byte
	offset     int
	size       int
	writeBack  bool // true for MAP_WRITE[_INVALIDATE_REGION]
}
