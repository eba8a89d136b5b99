package client

import "github.com/sanguinariojoe/oclandgo/proto"

// Map flags, mirroring the compute API's cl_map_flags bitmask.
const (
	MapRead                 uint64 = 1 << 0
	MapWrite                uint64 = 1 << 1
	MapWriteInvalidateRegion uint64 = 1 << 2
)

// EnqueueMapBuffer is synthesised entirely on the client (spec §4.8): it
// allocates a host region and, for a read-visible map, issues a plain read
// to populate it. MAP_WRITE_INVALIDATE_REGION skips the read and completes
// immediately, matching the resolved Open Question on ordering (spec §9:
// "issuing the wait before creating the user event").
func (c *Conn) EnqueueMapBuffer(queueID, memID uint64, blocking bool, flags uint64, offset, size int, wantEvent bool, waitList []uint64) (mapID uint64, host []byte, eventID uint64, err error) {
	c.tableMu.Lock()
	_, qok := c.queues[queueID]
	_, mok := c.mems[memID]
	c.tableMu.Unlock()
	if !qok {
		return 0, nil, 0, proto.InvalidQueue
	}
	if !mok {
		return 0, nil, 0, proto.InvalidMemObject
	}

	host = make([]byte, size)
	if flags&MapWriteInvalidateRegion != 0 {
		if err := c.WaitForEvents(waitList); err != nil {
			return 0, nil, 0, err
		}
		ctxID, cerr := c.QueueContext(queueID)
		if cerr != nil {
			return 0, nil, 0, cerr
		}
		userEventID, uerr := c.CreateUserEvent(ctxID)
		if uerr != nil {
			return 0, nil, 0, uerr
		}
		if serr := c.SetUserEventStatus(userEventID, 0); serr != nil {
			return 0, nil, 0, serr
		}
		eventID = userEventID
	} else {
		eventID, err = c.EnqueueReadBuffer(queueID, memID, blocking, offset, host, wantEvent, waitList)
		if err != nil {
			return 0, nil, 0, err
		}
	}

	mapID = c.nextLocalID()
	c.tableMu.Lock()
	c.maps[mapID] = &mapEntry{
		mem: memID, hostBuf: host, offset: offset, size: size,
		writeBack: flags&(MapWrite|MapWriteInvalidateRegion) != 0,
	}
	c.tableMu.Unlock()
	return mapID, host, eventID, nil
}

// EnqueueUnmapMemObject issues the write-back for a write-visible map
// (spec §4.8) and discards the map registry entry.
func (c *Conn) EnqueueUnmapMemObject(queueID uint64, mapID uint64, wantEvent bool, waitList []uint64) (uint64, error) {
	c.tableMu.Lock()
	entry, ok := c.maps[mapID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidValue
	}
	var eventID uint64
	var err error
	if entry.writeBack {
		eventID, err = c.EnqueueWriteBuffer(queueID, entry.mem, true, entry.offset, entry.hostBuf, wantEvent, waitList)
	} else {
		eventID, err = c.EnqueueMarkerWithWaitList(queueID, wantEvent, waitList)
	}
	if err != nil {
		return 0, err
	}
	c.tableMu.Lock()
	delete(c.maps, mapID)
	c.tableMu.Unlock()
	return eventID, nil
}
