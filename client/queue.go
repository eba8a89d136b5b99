package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// CreateCommandQueue mirrors clCreateCommandQueue: context, device, and the
// two boolean queue properties this implementation recognises.
func (c *Conn) CreateCommandQueue(contextID, deviceID uint64, outOfOrder, profiling bool) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	dev, dok := c.devices[deviceID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	if !dok {
		return 0, proto.InvalidDevice
	}
	var localID uint64
	err := c.call(proto.TagCreateCommandQueue, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dev.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(outOfOrder); err != nil {
			return err
		}
		if err := pc.WriteBool(profiling); err != nil {
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
		q := &Queue{ID: c.nextLocalID(), RemoteID: remoteID, Context: contextID, Device: deviceID}
		q.refcount.Store(1)
		c.tableMu.Lock()
		c.queues[q.ID] = q
		c.tableMu.Unlock()
		localID = q.ID
		return nil
	})
	return localID, err
}

func (c *Conn) RetainCommandQueue(id uint64) error {
	c.tableMu.Lock()
	q, ok := c.queues[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidQueue
	}
	return c.call(proto.TagRetainCommandQueue, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
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
		q.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseCommandQueue(id uint64) error {
	c.tableMu.Lock()
	q, ok := c.queues[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidQueue
	}
	return c.call(proto.TagReleaseCommandQueue, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
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
		if q.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.queues, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// QueueContext and QueueDevice answer GetCommandQueueInfo from the local
// cache (spec §4.5): both are fixed at creation time.
func (c *Conn) QueueContext(id uint64) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	q, ok := c.queues[id]
	if !ok {
		return 0, proto.InvalidQueue
	}
	return q.Context, nil
}

func (c *Conn) QueueDevice(id uint64) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	q, ok := c.queues[id]
	if !ok {
		return 0, proto.InvalidQueue
	}
	return q.Device, nil
}

func (c *Conn) Flush(id uint64) error {
	c.tableMu.Lock()
	q, ok := c.queues[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidQueue
	}
	return c.call(proto.TagFlush, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
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
		return nil
	})
}

func (c *Conn) Finish(id uint64) error {
	c.tableMu.Lock()
	q, ok := c.queues[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidQueue
	}
	return c.call(proto.TagFinish, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
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
		return nil
	})
}
