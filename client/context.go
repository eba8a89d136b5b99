package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// CreateContext mirrors clCreateContext: a device list plus an optional
// platform property. The frame always carries false for the completion
// callback — there is nothing in the transport that could invoke client
// code on the server's behalf (spec §4.8); icd.CreateContext rejects a
// caller-supplied callback with out-of-resources before reaching here.
func (c *Conn) CreateContext(deviceIDs []uint64, platformID uint64, hasPlatform bool) (uint64, error) {
	c.tableMu.Lock()
	remoteDevs := make([]uint64, len(deviceIDs))
	for i, id := range deviceIDs {
		d, ok := c.devices[id]
		if !ok {
			c.tableMu.Unlock()
			return 0, proto.InvalidDevice
		}
		remoteDevs[i] = d.RemoteID
	}
	var remotePlatform uint64
	if hasPlatform {
		p, ok := c.platforms[platformID]
		if !ok {
			c.tableMu.Unlock()
			return 0, proto.InvalidPlatform
		}
		remotePlatform = p.RemoteID
	}
	c.tableMu.Unlock()

	var localID uint64
	err := c.call(proto.TagCreateContext, func(pc *wire.Conn) error {
		if err := pc.WriteU32(uint32(len(remoteDevs))); err != nil {
			return err
		}
		for _, rid := range remoteDevs {
			if err := pc.WriteU64(rid); err != nil {
				return err
			}
		}
		if err := pc.WriteBool(hasPlatform); err != nil {
			return err
		}
		if hasPlatform {
			if err := pc.WriteU64(remotePlatform); err != nil {
				return err
			}
		}
		if err := pc.WriteBool(false); err != nil { // no completion callback
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
		ctx := &Context{ID: c.nextLocalID(), RemoteID: remoteID, Devices: deviceIDs}
		ctx.refcount.Store(1)
		c.tableMu.Lock()
		c.contexts[ctx.ID] = ctx
		c.tableMu.Unlock()
		localID = ctx.ID
		return nil
	})
	return localID, err
}

// RetainContext forwards to the server and, once it succeeds, bumps the
// local refcount mirror. Every retain and every release round-trips, and
// the server keeps its own count; the mirror only decides when
// ReleaseContext drops the local descriptor.
func (c *Conn) RetainContext(id uint64) error {
	c.tableMu.Lock()
	ctx, ok := c.contexts[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidContext
	}
	return c.call(proto.TagRetainContext, func(pc *wire.Conn) error {
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
		ctx.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseContext(id uint64) error {
	c.tableMu.Lock()
	ctx, ok := c.contexts[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidContext
	}
	return c.call(proto.TagReleaseContext, func(pc *wire.Conn) error {
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
		if ctx.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.contexts, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// ContextDevices answers GetContextInfo(CL_CONTEXT_DEVICES) from the local
// cache (spec §4.5: device lists are recorded at creation time and never
// change).
func (c *Conn) ContextDevices(id uint64) ([]uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	ctx, ok := c.contexts[id]
	if !ok {
		return nil, proto.InvalidContext
	}
	return ctx.Devices, nil
}
