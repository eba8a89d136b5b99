package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

func (c *Conn) CreateSampler(contextID uint64, normalized bool, addressMode, filterMode uint32) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	var localID uint64
	err := c.call(proto.TagCreateSampler, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(normalized); err != nil {
			return err
		}
		if err := pc.WriteU32(addressMode); err != nil {
			return err
		}
		if err := pc.WriteU32(filterMode); err != nil {
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
		sm := &Sampler{
			ID: c.nextLocalID(), RemoteID: remoteID, Context: contextID,
			Normalized: normalized, AddressMode: addressMode, FilterMode: filterMode,
		}
		sm.refcount.Store(1)
		c.tableMu.Lock()
		c.samplers[sm.ID] = sm
		c.tableMu.Unlock()
		localID = sm.ID
		return nil
	})
	return localID, err
}

func (c *Conn) RetainSampler(id uint64) error {
	c.tableMu.Lock()
	sm, ok := c.samplers[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidSampler
	}
	return c.call(proto.TagRetainSampler, func(pc *wire.Conn) error {
		if err := pc.WriteU64(sm.RemoteID); err != nil {
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
		sm.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseSampler(id uint64) error {
	c.tableMu.Lock()
	sm, ok := c.samplers[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidSampler
	}
	return c.call(proto.TagReleaseSampler, func(pc *wire.Conn) error {
		if err := pc.WriteU64(sm.RemoteID); err != nil {
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
		if sm.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.samplers, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// SamplerInfo answers GetSamplerInfo entirely from the local cache (spec
// §4.5): all three fields are fixed at creation time.
func (c *Conn) SamplerInfo(id uint64) (normalized bool, addressMode, filterMode uint32, err error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	sm, ok := c.samplers[id]
	if !ok {
		return false, 0, 0, proto.InvalidSampler
	}
	return sm.Normalized, sm.AddressMode, sm.FilterMode, nil
}
