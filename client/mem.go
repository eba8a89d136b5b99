package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// Memory flag bits, mirrored from the server side (spec §3) so callers can
// build a flags value without importing the server package.
const (
	MemReadWrite    uint64 = 1 << 0
	MemWriteOnly    uint64 = 1 << 1
	MemReadOnly     uint64 = 1 << 2
	MemUseHostPtr   uint64 = 1 << 3
	MemAllocHostPtr uint64 = 1 << 4
	MemCopyHostPtr  uint64 = 1 << 5
)

// CreateBuffer mirrors clCreateBuffer. When flags carries COPY_HOST_PTR,
// hostData is compressed straight into the creation frame (spec §4.8) —
// the same dataPack framing used by every bulk transfer, just inline here
// rather than over a side channel, since the payload already rides with
// the request.
func (c *Conn) CreateBuffer(contextID uint64, flags uint64, size int, hostData []byte) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	hasHostData := flags&MemCopyHostPtr != 0 && hostData != nil
	var localID uint64
	err := c.call(proto.TagCreateBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(flags); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(size)); err != nil {
			return err
		}
		if err := pc.WriteBool(hasHostData); err != nil {
			return err
		}
		if hasHostData {
			if err := pc.WriteDataPack(hostData); err != nil {
				return err
			}
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		remoteID, err := pc.ReadU64()
		if err != nil {
			return err
		}
		m := &Mem{ID: c.nextLocalID(), RemoteID: remoteID, Context: contextID, Size: size, Flags: flags}
		m.refcount.Store(1)
		c.tableMu.Lock()
		c.mems[m.ID] = m
		c.tableMu.Unlock()
		localID = m.ID
		return nil
	})
	return localID, err
}

// CreateSubBuffer mirrors clCreateSubBuffer's region variant.
func (c *Conn) CreateSubBuffer(parentID uint64, flags uint64, origin, size int) (uint64, error) {
	c.tableMu.Lock()
	parent, ok := c.mems[parentID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidMemObject
	}
	var localID uint64
	err := c.call(proto.TagCreateSubBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(parent.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(flags); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(origin)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(size)); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		remoteID, err := pc.ReadU64()
		if err != nil {
			return err
		}
		m := &Mem{ID: c.nextLocalID(), RemoteID: remoteID, Context: parent.Context, Size: size, Flags: flags, Parent: parentID}
		m.refcount.Store(1)
		c.tableMu.Lock()
		c.mems[m.ID] = m
		c.tableMu.Unlock()
		localID = m.ID
		return nil
	})
	return localID, err
}

func (c *Conn) RetainMemObject(id uint64) error {
	c.tableMu.Lock()
	m, ok := c.mems[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidMemObject
	}
	return c.call(proto.TagRetainMemObject, func(pc *wire.Conn) error {
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		m.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseMemObject(id uint64) error {
	c.tableMu.Lock()
	m, ok := c.mems[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidMemObject
	}
	return c.call(proto.TagReleaseMemObject, func(pc *wire.Conn) error {
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		if m.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.mems, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// MemSize and MemFlags answer GetMemObjectInfo from the local cache (spec
// §4.5): both are fixed at creation time.
func (c *Conn) MemSize(id uint64) (int, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	m, ok := c.mems[id]
	if !ok {
		return 0, proto.InvalidMemObject
	}
	return m.Size, nil
}

func (c *Conn) MemFlags(id uint64) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	m, ok := c.mems[id]
	if !ok {
		return 0, proto.InvalidMemObject
	}
	return m.Flags, nil
}

// CreateImage always fails: the software device has no image execution
// model (spec §3, §8), matching the server's own rejection so a caller
// never round-trips for an answer it already knows.
func (c *Conn) CreateImage() (uint64, error) { return 0, proto.InvalidValue }

func (c *Conn) GetSupportedImageFormats(contextID uint64) ([]uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidContext
	}
	var formats []uint64
	err := c.call(proto.TagGetSupportedImageFormats, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		formats, err = readU64List(pc)
		return err
	})
	return formats, err
}
