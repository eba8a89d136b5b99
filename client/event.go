package client

import (
	"github.com/sanguinariojoe/oclandgo/ocevent"
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// registerEvent wraps a server-assigned event ID in a local descriptor,
// called whenever an enqueue reply carries a new_event_id (spec §4.4).
func (c *Conn) registerEvent(remoteID, contextID, queueID uint64, cmdType proto.Tag) uint64 {
	localID := c.nextLocalID()
	ev := &Event{Event: ocevent.New(localID, contextID, queueID, uint32(cmdType)), RemoteID: remoteID}
	c.tableMu.Lock()
	c.events[localID] = ev
	c.tableMu.Unlock()
	return localID
}

func (c *Conn) remoteIDsForEvents(ids []uint64) ([]uint64, proto.Status) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	out := make([]uint64, len(ids))
	for i, id := range ids {
		ev, ok := c.events[id]
		if !ok {
			return nil, proto.InvalidEventWaitList
		}
		out[i] = ev.RemoteID
	}
	return out, proto.Success
}

// WaitForEvents blocks until every event in ids is terminal (spec §4.3),
// then refreshes each event's local status mirror from the server.
// EventCommandExecutionStatus still round-trips rather than reading it.
func (c *Conn) WaitForEvents(ids []uint64) error {
	remote, st := c.remoteIDsForEvents(ids)
	if st != proto.Success {
		return st
	}
	err := c.call(proto.TagWaitForEvents, func(pc *wire.Conn) error {
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
		waitSt, err := readStatus(pc)
		if err != nil {
			return err
		}
		if waitSt != proto.Success {
			return waitSt
		}
		return nil
	})
	for _, id := range ids {
		c.refreshEventStatus(id)
	}
	return err
}

func (c *Conn) refreshEventStatus(id uint64) {
	b, ferr := c.getEventInfo(id, proto.ParamEventCommandExecutionStatus)
	if ferr != nil {
		return
	}
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return
	}
	if int32(le64ToU64(b)) < 0 {
		ev.SetStatus(ocevent.Error)
	} else {
		ev.SetStatus(ocevent.Complete)
	}
}

func (c *Conn) getEventInfo(id uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidEvent
	}
	var payload []byte
	err := c.call(proto.TagGetEventInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ev.RemoteID); err != nil {
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

// EventCommandType and EventCommandExecutionStatus answer GetEventInfo,
// the latter always via a round trip since only the server knows the
// live status of a non-user event (spec §4.5 does not list this as a
// local-shortcut field).
func (c *Conn) EventCommandType(id uint64) (uint32, error) {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidEvent
	}
	return ev.CmdType, nil
}

func (c *Conn) EventCommandExecutionStatus(id uint64) (int32, error) {
	b, err := c.getEventInfo(id, proto.ParamEventCommandExecutionStatus)
	if err != nil {
		return 0, err
	}
	return int32(le64ToU64(b)), nil
}

func (c *Conn) EventContext(id uint64) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	ev, ok := c.events[id]
	if !ok {
		return 0, proto.InvalidEvent
	}
	return ev.Context, nil
}

func (c *Conn) EventCommandQueue(id uint64) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	ev, ok := c.events[id]
	if !ok {
		return 0, proto.InvalidEvent
	}
	return ev.Queue, nil
}

func (c *Conn) RetainEvent(id uint64) error {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidEvent
	}
	return c.call(proto.TagRetainEvent, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ev.RemoteID); err != nil {
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
		ev.Refcount().Add(1)
		return nil
	})
}

func (c *Conn) ReleaseEvent(id uint64) error {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidEvent
	}
	return c.call(proto.TagReleaseEvent, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ev.RemoteID); err != nil {
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
		if ev.Refcount().Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.events, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

func (c *Conn) CreateUserEvent(contextID uint64) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	var localID uint64
	err := c.call(proto.TagCreateUserEvent, func(pc *wire.Conn) error {
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
		remoteID, err := pc.ReadU64()
		if err != nil {
			return err
		}
		localID = c.nextLocalID()
		ev := &Event{Event: ocevent.NewUser(localID, contextID), RemoteID: remoteID}
		c.tableMu.Lock()
		c.events[localID] = ev
		c.tableMu.Unlock()
		return nil
	})
	return localID, err
}

// SetUserEventStatus drives a user event to a terminal state (spec §4.3).
func (c *Conn) SetUserEventStatus(id uint64, execStatus int32) error {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidEvent
	}
	if !ev.IsUser {
		return proto.InvalidEvent
	}
	return c.call(proto.TagSetUserEventStatus, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ev.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteI32(execStatus); err != nil {
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
		if execStatus < 0 {
			ev.SetStatus(ocevent.Error)
		} else {
			ev.SetStatus(ocevent.Complete)
		}
		return nil
	})
}

// SetEventCallback always fails invalid-event: there is nothing on this
// transport that could invoke client code from the server (spec §4.8),
// matching the server's own rejection so a caller never round-trips.
func (c *Conn) SetEventCallback(id uint64) error {
	c.tableMu.Lock()
	_, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidEvent
	}
	return proto.InvalidEvent
}

func (c *Conn) GetEventProfilingInfo(id uint64, param proto.Param) (int64, error) {
	c.tableMu.Lock()
	ev, ok := c.events[id]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidEvent
	}
	var payload []byte
	err := c.call(proto.TagGetEventProfilingInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ev.RemoteID); err != nil {
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
	if err != nil {
		return 0, err
	}
	return int64(le64ToU64(payload)), nil
}
