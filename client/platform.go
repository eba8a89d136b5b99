package client

import (
	"encoding/binary"

	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// GetPlatformIDs retrieves the server's platform set once per connection
// lifetime worth of caching: repeated calls re-fetch (the server's
// topology is static, spec §8 scenario 1, but nothing forbids asking
// again) and simply refresh the local cache idempotently.
func (c *Conn) GetPlatformIDs() ([]uint64, error) {
	var ids []uint64
	err := c.call(proto.TagGetPlatformIDs, func(pc *wire.Conn) error {
		if err := pc.WriteU32(0); err != nil { // no cap on reported entries
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
		remoteIDs, err := readU64List(pc)
		if err != nil {
			return err
		}
		c.tableMu.Lock()
		defer c.tableMu.Unlock()
		for _, rid := range remoteIDs {
			var p *Platform
			for _, known := range c.platforms {
				if known.RemoteID == rid {
					p = known
					break
				}
			}
			if p == nil {
				p = &Platform{ID: c.nextLocalID(), RemoteID: rid}
				c.platforms[p.ID] = p
			}
			ids = append(ids, p.ID)
		}
		return nil
	})
	return ids, err
}

func (c *Conn) GetDeviceIDs(platformID uint64) ([]uint64, error) {
	c.tableMu.Lock()
	p, ok := c.platforms[platformID]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidPlatform
	}
	var ids []uint64
	err := c.call(proto.TagGetDeviceIDs, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
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
		remoteIDs, err := readU64List(pc)
		if err != nil {
			return err
		}
		c.tableMu.Lock()
		defer c.tableMu.Unlock()
		for _, rid := range remoteIDs {
			d := &Device{ID: c.nextLocalID(), RemoteID: rid, Platform: platformID}
			d.refcount.Store(1)
			c.devices[d.ID] = d
			ids = append(ids, d.ID)
		}
		return nil
	})
	return ids, err
}

func (c *Conn) getPlatformInfo(id uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	p, ok := c.platforms[id]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidPlatform
	}
	var payload []byte
	err := c.call(proto.TagGetPlatformInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(param)); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		return readInfoReply(pc, &payload)
	})
	return payload, err
}

// PlatformName, PlatformVendor, PlatformVersion and PlatformProfile each
// fetch-and-cache their field the first time it is asked for (spec §4.5):
// none of the four change after GetPlatformIDs first reports the handle.
func (c *Conn) PlatformName(id uint64) (string, error) {
	return c.cachedPlatformField(id, proto.ParamName, func(p *Platform) *string { return &p.Name })
}

func (c *Conn) PlatformVendor(id uint64) (string, error) {
	return c.cachedPlatformField(id, proto.ParamVendor, func(p *Platform) *string { return &p.Vendor })
}

func (c *Conn) PlatformVersion(id uint64) (string, error) {
	return c.cachedPlatformField(id, proto.ParamVersion, func(p *Platform) *string { return &p.Version })
}

func (c *Conn) PlatformProfile(id uint64) (string, error) {
	return c.cachedPlatformField(id, proto.ParamProfile, func(p *Platform) *string { return &p.Profile })
}

func (c *Conn) cachedPlatformField(id uint64, param proto.Param, field func(*Platform) *string) (string, error) {
	c.tableMu.Lock()
	p, ok := c.platforms[id]
	c.tableMu.Unlock()
	if !ok {
		return "", proto.InvalidPlatform
	}
	if v := *field(p); v != "" {
		return v, nil
	}
	b, err := c.getPlatformInfo(id, param)
	if err != nil {
		return "", err
	}
	c.tableMu.Lock()
	*field(p) = string(b)
	c.tableMu.Unlock()
	return string(b), nil
}

// CreateSubDevices always fails: the software device has no partitioning
// model (spec §4.8 treats unsupported object-creation shapes as
// invalid-value), matching the server's own rejection so a caller never
// round-trips for an answer it already knows.
func (c *Conn) CreateSubDevices(deviceID uint64) ([]uint64, error) { return nil, proto.InvalidValue }

func (c *Conn) RetainDevice(id uint64) error {
	c.tableMu.Lock()
	d, ok := c.devices[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidDevice
	}
	return c.call(proto.TagRetainDevice, func(pc *wire.Conn) error {
		if err := pc.WriteU64(d.RemoteID); err != nil {
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
		d.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseDevice(id uint64) error {
	c.tableMu.Lock()
	d, ok := c.devices[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidDevice
	}
	return c.call(proto.TagReleaseDevice, func(pc *wire.Conn) error {
		if err := pc.WriteU64(d.RemoteID); err != nil {
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
		if d.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.devices, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

func (c *Conn) getDeviceInfo(id uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	d, ok := c.devices[id]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidDevice
	}
	var payload []byte
	err := c.call(proto.TagGetDeviceInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(d.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(param)); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		return readInfoReply(pc, &payload)
	})
	return payload, err
}

// DeviceName fetches and caches the device name (spec §4.5 local-shortcut
// pattern: answered from cache on every call after the first).
func (c *Conn) DeviceName(id uint64) (string, error) {
	c.tableMu.Lock()
	d, ok := c.devices[id]
	c.tableMu.Unlock()
	if !ok {
		return "", proto.InvalidDevice
	}
	if d.Name != "" {
		return d.Name, nil
	}
	b, err := c.getDeviceInfo(id, proto.ParamName)
	if err != nil {
		return "", err
	}
	c.tableMu.Lock()
	d.Name = string(b)
	c.tableMu.Unlock()
	return d.Name, nil
}

func (c *Conn) DeviceMaxWorkGroupSize(id uint64) (int, error) {
	b, err := c.getDeviceInfo(id, proto.ParamMaxWorkGroupSize)
	if err != nil {
		return 0, err
	}
	return int(le64ToU64(b)), nil
}

// readU64List decodes the {count u32; id u64...} shape used by every
// *IDs-returning command.
func readU64List(pc *wire.Conn) ([]uint64, error) {
	n, err := pc.ReadU32()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, n)
	for i := range ids {
		if ids[i], err = pc.ReadU64(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// readInfoReply decodes the "status, returned_size, payload" shape (spec
// §4.4) once status has not yet been consumed.
func readInfoReply(pc *wire.Conn, out *[]byte) error {
	st, err := readStatus(pc)
	if err != nil {
		return err
	}
	if st != proto.Success {
		return st
	}
	n, err := pc.ReadSize()
	if err != nil {
		return err
	}
	b, err := pc.ReadRaw(int(n))
	if err != nil {
		return err
	}
	*out = b
	return nil
}

func le64ToU64(b []byte) uint64 {
	var padded [8]byte
	copy(padded[:], b)
	return binary.LittleEndian.Uint64(padded[:])
}
