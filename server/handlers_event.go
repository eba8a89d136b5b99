package server

import (
	"context"

	"github.com/sanguinariojoe/oclandgo/ocevent"
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagWaitForEvents, hWaitForEvents)
	register(proto.TagGetEventInfo, hGetEventInfo)
	register(proto.TagRetainEvent, hRetainEvent)
	register(proto.TagReleaseEvent, hReleaseEvent)
	register(proto.TagCreateUserEvent, hCreateUserEvent)
	register(proto.TagSetUserEventStatus, hSetUserEventStatus)
	register(proto.TagSetEventCallback, hSetEventCallback)
	register(proto.TagGetEventProfilingInfo, hGetEventProfilingInfo)
}

// readEventList decodes a u32 count followed by that many event IDs,
// resolving each against the registry and failing eagerly with
// invalid-event-wait-list on the first miss (spec §4.2, §4.3).
func readEventList(s *Session) ([]*Event, error, proto.Status) {
	n, err := s.conn.ReadU32()
	if err != nil {
		return nil, err, 0
	}
	events := make([]*Event, 0, n)
	for i := uint32(0); i < n; i++ {
		id, err := s.conn.ReadU64()
		if err != nil {
			return nil, err, 0
		}
		h, ok := s.reg.Lookup(proto.KindEvent, id)
		if !ok {
			return nil, nil, proto.InvalidEventWaitList
		}
		events = append(events, h.(*Event))
	}
	return events, nil, proto.Success
}

func hWaitForEvents(s *Session) error {
	events, err, st := readEventList(s)
	if err != nil {
		return err
	}
	if st != proto.Success {
		return replyStatus(s.conn, st)
	}
	if err := ocevent.WaitList(context.Background(), events); err != nil {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	for _, e := range events {
		if e.Status() == ocevent.Error {
			return replyStatus(s.conn, proto.ExecStatusErrorForEventsInWaitList)
		}
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetEventInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	ev, found, rerr := lookupTyped[*Event](s, proto.KindEvent, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamEventCommandType:
		payload = le64(uint64(ev.CmdType))
	case proto.ParamEventCommandExecutionStatus:
		payload = le64(uint64(execStatusCode(ev.Status())))
	case proto.ParamEventContext:
		payload = le64(ev.Context)
	case proto.ParamEventCommandQueue:
		payload = le64(ev.Queue)
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

// execStatusCode mirrors the compute API's signed execution-status values:
// non-negative is a command-queue stage, negative is an error code. This
// software device reports submitted (2), running (1), complete (0), or a
// generic -1 error.
func execStatusCode(st ocevent.Status) int32 {
	switch st {
	case ocevent.Submitted:
		return 2
	case ocevent.Running:
		return 1
	case ocevent.Complete:
		return 0
	default:
		return -1
	}
}

func hRetainEvent(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindEvent, id); !ok {
		return replyStatus(s.conn, proto.InvalidEvent)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseEvent(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindEvent, id); !ok {
		return replyStatus(s.conn, proto.InvalidEvent)
	}
	return replyStatus(s.conn, proto.Success)
}

func hCreateUserEvent(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	id := s.reg.NextID()
	ev := ocevent.NewUser(id, ctxID)
	s.reg.Register(proto.KindEvent, ev)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(id); err != nil {
		return err
	}
	return s.conn.Flush()
}

// hSetUserEventStatus is the one place a client may move an event to
// Complete/Error out of band (spec §4.3): only user events may be driven
// this way, and only to a terminal state.
func hSetUserEventStatus(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	execStatus, err := s.conn.ReadI32()
	if err != nil {
		return err
	}
	ev, found, rerr := lookupTyped[*Event](s, proto.KindEvent, id)
	if !found {
		return rerr
	}
	if !ev.IsUser {
		return replyStatus(s.conn, proto.InvalidEvent)
	}
	if execStatus < 0 {
		ev.SetStatus(ocevent.Error)
	} else {
		ev.SetStatus(ocevent.Complete)
	}
	s.PushEventNotice(id, execStatus)
	return replyStatus(s.conn, proto.Success)
}

// hSetEventCallback always fails invalid-event: the server cannot call back
// into client code without a dedicated runtime on the client (spec §4.8).
func hSetEventCallback(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, err := s.conn.ReadI32(); err != nil { // requested callback exec-status trigger
		return err
	}
	if !s.reg.Has(proto.KindEvent, id) {
		return replyStatus(s.conn, proto.InvalidEvent)
	}
	return replyStatus(s.conn, proto.InvalidEvent)
}

func hGetEventProfilingInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	ev, found, rerr := lookupTyped[*Event](s, proto.KindEvent, id)
	if !found {
		return rerr
	}
	queued, submit, start, end := ev.Profiling()
	var v int64
	switch proto.Param(param) {
	case proto.ParamEventProfilingQueued:
		v = queued
	case proto.ParamEventProfilingSubmit:
		v = submit
	case proto.ParamEventProfilingStart:
		v = start
	case proto.ParamEventProfilingEnd:
		v = end
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, le64(uint64(v)))
}
