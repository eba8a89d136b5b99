package client

import (
	"github.com/sanguinariojoe/oclandgo/bulk"
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// writeEnqueueTail writes the shared "want_event, num_wait, wait_list"
// suffix every enqueue command shares (spec §4.5), resolving local event
// IDs to their remote identities under the table lock.
func (c *Conn) writeEnqueueTail(pc *wire.Conn, wantEvent bool, waitList []uint64) error {
	if err := pc.WriteBool(wantEvent); err != nil {
		return err
	}
	remote, st := c.remoteIDsForEvents(waitList)
	if st != proto.Success {
		return st
	}
	if err := pc.WriteU32(uint32(len(remote))); err != nil {
		return err
	}
	for _, rid := range remote {
		if err := pc.WriteU64(rid); err != nil {
			return err
		}
	}
	return nil
}

// readEnqueueHeader reads status and, if wantEvent, the new remote event
// ID, registering a local Event descriptor for it.
func (c *Conn) readEnqueueHeader(pc *wire.Conn, wantEvent bool, contextID, queueID uint64, cmdType proto.Tag) (uint64, error) {
	st, err := readStatus(pc)
	if err != nil {
		return 0, err
	}
	if st != proto.Success {
		return 0, st
	}
	if !wantEvent {
		return 0, nil
	}
	remoteID, err := pc.ReadU64()
	if err != nil {
		return 0, err
	}
	return c.registerEvent(remoteID, contextID, queueID, cmdType), nil
}

func (c *Conn) resolveQueueMem(queueID, memID uint64) (*Queue, *Mem, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	m, mok := c.mems[memID]
	c.tableMu.Unlock()
	if !qok {
		return nil, nil, proto.InvalidQueue
	}
	if !mok {
		return nil, nil, proto.InvalidMemObject
	}
	return q, m, nil
}

// EnqueueReadBuffer mirrors clEnqueueReadBuffer. When blocking is false, a
// non-blocking bulk transfer is dialled on the ephemeral port the server
// hands back (spec §4.7); dst is filled in place once the transfer
// completes.
func (c *Conn) EnqueueReadBuffer(queueID, memID uint64, blocking bool, offset int, dst []byte, wantEvent bool, waitList []uint64) (uint64, error) {
	q, _, err := c.resolveQueueMem(queueID, memID)
	if err != nil {
		return 0, err
	}
	var eventID uint64
	var port uint32
	err = c.call(proto.TagEnqueueReadBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		c.tableMu.Lock()
		m := c.mems[memID]
		c.tableMu.Unlock()
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(blocking); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(offset)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(len(dst))); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueReadBuffer)
		if err != nil {
			return err
		}
		if blocking {
			buf, err := pc.ReadDataPack(len(dst))
			if err != nil {
				return err
			}
			copy(dst, buf)
			return nil
		}
		p, err := pc.ReadU32()
		if err != nil {
			return err
		}
		port = p
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !blocking {
		bc, derr := bulk.Dial(bulkAddr(c), int(port))
		if derr != nil {
			return eventID, derr
		}
		if derr := bulk.ClientRead(bc, dst, bulk.Region{Width: len(dst), Height: 1, Depth: 1}); derr != nil {
			return eventID, derr
		}
	}
	return eventID, nil
}

// EnqueueWriteBuffer mirrors clEnqueueWriteBuffer, symmetric to
// EnqueueReadBuffer.
func (c *Conn) EnqueueWriteBuffer(queueID, memID uint64, blocking bool, offset int, src []byte, wantEvent bool, waitList []uint64) (uint64, error) {
	q, _, err := c.resolveQueueMem(queueID, memID)
	if err != nil {
		return 0, err
	}
	var eventID uint64
	var port uint32
	err = c.call(proto.TagEnqueueWriteBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		c.tableMu.Lock()
		m := c.mems[memID]
		c.tableMu.Unlock()
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(blocking); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(offset)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(len(src))); err != nil {
			return err
		}
		if blocking {
			if err := pc.WriteDataPack(src); err != nil {
				return err
			}
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueWriteBuffer)
		if err != nil {
			return err
		}
		if !blocking {
			p, err := pc.ReadU32()
			if err != nil {
				return err
			}
			port = p
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !blocking {
		bc, derr := bulk.Dial(bulkAddr(c), int(port))
		if derr != nil {
			return eventID, derr
		}
		if derr := bulk.ClientWrite(bc, src, bulk.Region{Width: len(src), Height: 1, Depth: 1}); derr != nil {
			return eventID, derr
		}
	}
	return eventID, nil
}

func (c *Conn) writeRectHeader(pc *wire.Conn, bufOrigin, bufRowPitch, bufSlicePitch int, r bulk.Region) error {
	if err := pc.WriteSize(uint64(bufOrigin)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(bufRowPitch)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(bufSlicePitch)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(r.Width)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(r.Height)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(r.Depth)); err != nil {
		return err
	}
	if err := pc.WriteSize(uint64(r.HostRowPitch)); err != nil {
		return err
	}
	return pc.WriteSize(uint64(r.HostSlicePitch))
}

// EnqueueReadBufferRect and EnqueueWriteBufferRect only support the
// blocking form: the server rejects a non-blocking rect transfer outright
// (spec §4.7 scope cut, see DESIGN.md), so this client never attempts the
// ephemeral-port path for them.
func (c *Conn) EnqueueReadBufferRect(queueID, memID uint64, bufOrigin, bufRowPitch, bufSlicePitch int, host []byte, region bulk.Region, wantEvent bool, waitList []uint64) (uint64, error) {
	q, _, err := c.resolveQueueMem(queueID, memID)
	if err != nil {
		return 0, err
	}
	var eventID uint64
	err = c.call(proto.TagEnqueueReadBufferRect, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		c.tableMu.Lock()
		m := c.mems[memID]
		c.tableMu.Unlock()
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(true); err != nil {
			return err
		}
		if err := c.writeRectHeader(pc, bufOrigin, bufRowPitch, bufSlicePitch, region); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueReadBufferRect)
		if err != nil {
			return err
		}
		dense, err := pc.ReadDataPack(region.Width * region.Height * region.Depth)
		if err != nil {
			return err
		}
		bulk.UnpackPitched(dense, host, region)
		return nil
	})
	return eventID, err
}

func (c *Conn) EnqueueWriteBufferRect(queueID, memID uint64, bufOrigin, bufRowPitch, bufSlicePitch int, host []byte, region bulk.Region, wantEvent bool, waitList []uint64) (uint64, error) {
	q, _, err := c.resolveQueueMem(queueID, memID)
	if err != nil {
		return 0, err
	}
	var eventID uint64
	err = c.call(proto.TagEnqueueWriteBufferRect, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		c.tableMu.Lock()
		m := c.mems[memID]
		c.tableMu.Unlock()
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(true); err != nil {
			return err
		}
		if err := c.writeRectHeader(pc, bufOrigin, bufRowPitch, bufSlicePitch, region); err != nil {
			return err
		}
		dense := bulk.PackDense(host, region)
		if err := pc.WriteDataPack(dense); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueWriteBufferRect)
		return err
	})
	return eventID, err
}

func (c *Conn) EnqueueCopyBuffer(queueID, srcID, dstID uint64, srcOff, dstOff, size int, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	src, sok := c.mems[srcID]
	dst, dok := c.mems[dstID]
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	if !sok || !dok {
		return 0, proto.InvalidMemObject
	}
	var eventID uint64
	err := c.call(proto.TagEnqueueCopyBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(src.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dst.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(srcOff)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(dstOff)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(size)); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueCopyBuffer)
		return err
	})
	return eventID, err
}

func (c *Conn) EnqueueCopyBufferRect(queueID, srcID, dstID uint64, srcOrigin, srcRowPitch, srcSlicePitch int, dstOrigin, dstRowPitch, dstSlicePitch int, region bulk.Region, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	src, sok := c.mems[srcID]
	dst, dok := c.mems[dstID]
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	if !sok || !dok {
		return 0, proto.InvalidMemObject
	}
	var eventID uint64
	err := c.call(proto.TagEnqueueCopyBufferRect, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(src.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dst.RemoteID); err != nil {
			return err
		}
		if err := c.writeRectHeader(pc, srcOrigin, srcRowPitch, srcSlicePitch, region); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(dstOrigin)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(dstRowPitch)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(dstSlicePitch)); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueCopyBufferRect)
		return err
	})
	return eventID, err
}

func (c *Conn) EnqueueFillBuffer(queueID, memID uint64, pattern []byte, offset, size int, wantEvent bool, waitList []uint64) (uint64, error) {
	q, m, err := c.resolveQueueMem(queueID, memID)
	if err != nil {
		return 0, err
	}
	var eventID uint64
	err = c.call(proto.TagEnqueueFillBuffer, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBytes(pattern); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(offset)); err != nil {
			return err
		}
		if err := pc.WriteSize(uint64(size)); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueFillBuffer)
		return err
	})
	return eventID, err
}

// EnqueueMigrateMemObjects is accepted with no data movement, since a
// single-backend deployment has nothing to migrate between (spec §5); its
// event completes once its wait-list clears.
func (c *Conn) EnqueueMigrateMemObjects(queueID uint64, memIDs []uint64, flags uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	remoteMems := make([]uint64, 0, len(memIDs))
	for _, id := range memIDs {
		if m, ok := c.mems[id]; ok {
			remoteMems = append(remoteMems, m.RemoteID)
		}
	}
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	if len(remoteMems) != len(memIDs) {
		return 0, proto.InvalidMemObject
	}
	var eventID uint64
	err := c.call(proto.TagEnqueueMigrateMemObjects, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(len(remoteMems))); err != nil {
			return err
		}
		for _, rid := range remoteMems {
			if err := pc.WriteU64(rid); err != nil {
				return err
			}
		}
		if err := pc.WriteU64(flags); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, proto.TagEnqueueMigrateMemObjects)
		return err
	})
	return eventID, err
}

func (c *Conn) enqueueKernel(tag proto.Tag, queueID, kernelID uint64, globalSizes []int, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	k, kok := c.kernels[kernelID]
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	if !kok {
		return 0, proto.InvalidKernel
	}
	var eventID uint64
	err := c.call(tag, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if tag == proto.TagEnqueueNDRangeKernel {
			if err := pc.WriteU32(uint32(len(globalSizes))); err != nil {
				return err
			}
			for _, n := range globalSizes {
				if err := pc.WriteSize(uint64(n)); err != nil {
					return err
				}
			}
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, tag)
		return err
	})
	return eventID, err
}

func (c *Conn) EnqueueNDRangeKernel(queueID, kernelID uint64, globalSizes []int, wantEvent bool, waitList []uint64) (uint64, error) {
	return c.enqueueKernel(proto.TagEnqueueNDRangeKernel, queueID, kernelID, globalSizes, wantEvent, waitList)
}

func (c *Conn) EnqueueTask(queueID, kernelID uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	return c.enqueueKernel(proto.TagEnqueueTask, queueID, kernelID, nil, wantEvent, waitList)
}

// EnqueueNativeKernel always fails: there is no way to marshal a client
// function pointer across this transport (spec §1 scope).
func (c *Conn) EnqueueNativeKernel() error { return proto.InvalidOperation }

func (c *Conn) enqueueNoKernel(tag proto.Tag, queueID uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	var eventID uint64
	err := c.call(tag, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := c.writeEnqueueTail(pc, wantEvent, waitList); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		var err error
		eventID, err = c.readEnqueueHeader(pc, wantEvent, q.Context, queueID, tag)
		return err
	})
	return eventID, err
}

func (c *Conn) EnqueueMarkerWithWaitList(queueID uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	return c.enqueueNoKernel(proto.TagEnqueueMarkerWithWaitList, queueID, wantEvent, waitList)
}

// EnqueueBarrierWithWaitList behaves identically to the marker variant
// here: the server has no queued-work model that a barrier would need to
// additionally hold back (spec §5).
func (c *Conn) EnqueueBarrierWithWaitList(queueID uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	return c.enqueueNoKernel(proto.TagEnqueueBarrierWithWaitList, queueID, wantEvent, waitList)
}

// EnqueueMarker is the deprecated, wait-list-less entry point: it always
// wants an event back.
func (c *Conn) EnqueueMarker(queueID uint64) (uint64, error) {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	c.tableMu.Unlock()
	if !qok {
		return 0, proto.InvalidQueue
	}
	var eventID uint64
	err := c.call(proto.TagEnqueueMarker, func(pc *wire.Conn) error {
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
		remoteID, err := pc.ReadU64()
		if err != nil {
			return err
		}
		eventID = c.registerEvent(remoteID, q.Context, queueID, proto.TagEnqueueMarker)
		return nil
	})
	return eventID, err
}

// EnqueueWaitForEvents is the deprecated entry point that blocks on an
// explicit event list without returning a new event.
func (c *Conn) EnqueueWaitForEvents(queueID uint64, waitList []uint64) error {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	c.tableMu.Unlock()
	if !qok {
		return proto.InvalidQueue
	}
	remote, st := c.remoteIDsForEvents(waitList)
	if st != proto.Success {
		return st
	}
	return c.call(proto.TagEnqueueWaitForEvents, func(pc *wire.Conn) error {
		if err := pc.WriteU64(q.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(len(remote))); err != nil {
			return err
		}
		for _, rid := range remote {
			if err := pc.WriteU64(rid); err != nil {
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
		return nil
	})
}

// EnqueueBarrier is the deprecated, wait-list-less barrier.
func (c *Conn) EnqueueBarrier(queueID uint64) error {
	c.tableMu.Lock()
	q, qok := c.queues[queueID]
	c.tableMu.Unlock()
	if !qok {
		return proto.InvalidQueue
	}
	return c.call(proto.TagEnqueueBarrier, func(pc *wire.Conn) error {
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
