package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sanguinariojoe/oclandgo/cmn/cos"
)

// Conn wraps a net.Conn with the primitives every ocland frame is built
// from. A single Conn is never used concurrently for a request/reply pair
// (spec §4.5: "the client holds a per-connection lock across a full
// request/reply pair"); that locking lives in the client package, not
// here — Conn itself is a thin codec layer.
type Conn struct {
	nc  net.Conn
	r   *bufio.Reader
	w   *bufio.Writer
	mu  sync.Mutex // guards w.Flush against interleaved partial writes
	bad bool       // set once a framing error makes the connection unusable
}

func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc, r: bufio.NewReaderSize(nc, 64*1024), w: bufio.NewWriterSize(nc, 64*1024)}
}

func (c *Conn) Raw() net.Conn { return c.nc }
func (c *Conn) Bad() bool     { return c.bad }

func (c *Conn) Close() error { return c.nc.Close() }

// fail marks the connection unusable. Per spec §4.1, "a truncated control
// read is fatal to the connection; a mismatched pointer-kind tag is fatal
// to the connection."
func (c *Conn) fail(err error) error {
	c.bad = true
	return err
}

//
// scalars
//

func (c *Conn) WriteU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := c.w.Write(b[:])
	if err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Conn) ReadU32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, c.fail(err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (c *Conn) WriteI32(v int32) error { return c.WriteU32(uint32(v)) }
func (c *Conn) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Conn) WriteU64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := c.w.Write(b[:])
	if err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Conn) ReadU64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return 0, c.fail(err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (c *Conn) WriteBool(v bool) error {
	var b byte
	if v {
		b = 1
	}
	if _, err := c.w.Write([]byte{b}); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Conn) ReadBool() (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		return false, c.fail(err)
	}
	return b[0] != 0, nil
}

//
// size_t-class values: u64 on the wire regardless of host width (spec §4.4)
//

func (c *Conn) WriteSize(v uint64) error { return c.WriteU64(v) }
func (c *Conn) ReadSize() (uint64, error) { return c.ReadU64() }

//
// pointer wrapper: u8 kind; u64 id (spec §4.1, §9)
//

type PointerKind uint8

const (
	PointerNull PointerKind = iota
	PointerHandle
	PointerHost // opaque client-side address, meaningful only to the client
)

type Pointer struct {
	Kind PointerKind
	ID   uint64
}

func (c *Conn) WritePointer(p Pointer) error {
	if _, err := c.w.Write([]byte{byte(p.Kind)}); err != nil {
		return c.fail(err)
	}
	return c.WriteU64(p.ID)
}

func (c *Conn) ReadPointer() (Pointer, error) {
	var kb [1]byte
	if _, err := io.ReadFull(c.r, kb[:]); err != nil {
		return Pointer{}, c.fail(err)
	}
	k := PointerKind(kb[0])
	if k != PointerNull && k != PointerHandle && k != PointerHost {
		return Pointer{}, c.fail(fmt.Errorf("wire: mismatched pointer-kind tag %d", kb[0]))
	}
	id, err := c.ReadU64()
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{Kind: k, ID: id}, nil
}

// WriteRaw/ReadRaw write/read bytes with no length prefix, used for the
// "reply is status, returned_size, payload[returned_size]" framing (spec
// §4.4) where the size has already been sent as its own field.
func (c *Conn) WriteRaw(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := c.w.Write(b); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Conn) ReadRaw(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, c.fail(err)
	}
	return buf, nil
}

//
// variable-length strings and byte arrays: len (size_t) then bytes
//

func (c *Conn) WriteBytes(b []byte) error {
	if err := c.WriteSize(uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if _, err := c.w.Write(b); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Conn) ReadBytes() ([]byte, error) {
	n, err := c.ReadSize()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, c.fail(err)
	}
	return buf, nil
}

func (c *Conn) WriteString(s string) error { return c.WriteBytes([]byte(s)) }
func (c *Conn) ReadString() (string, error) {
	b, err := c.ReadBytes()
	return string(b), err
}

// Flush sends buffered writes. Every handler boundary is a commit point
// (spec §4.6): a handler must Flush before returning success, or not at
// all if it is abandoning the connection.
func (c *Conn) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.w.Flush(); err != nil {
		return c.fail(err)
	}
	return nil
}

// FatalErr classifies err per spec §7: protocol errors after transmission
// surface as out-of-resources to the caller and tear down the connection.
func FatalErr(err error) bool {
	return err != nil && (cos.IsEOF(err) || cos.IsRetriableConnErr(err))
}
