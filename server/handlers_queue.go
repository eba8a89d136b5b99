package server

import (
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagCreateCommandQueue, hCreateCommandQueue)
	register(proto.TagRetainCommandQueue, hRetainCommandQueue)
	register(proto.TagReleaseCommandQueue, hReleaseCommandQueue)
	register(proto.TagGetCommandQueueInfo, hGetCommandQueueInfo)
	register(proto.TagFlush, hFlush)
	register(proto.TagFinish, hFinish)
}

func hCreateCommandQueue(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	devID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	outOfOrder, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	profiling, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	if _, found, rerr := lookupTyped[*Device](s, proto.KindDevice, devID); !found {
		return rerr
	}
	q := &Queue{Context: ctxID, Device: devID, OutOfOrder: outOfOrder, Profiling: profiling}
	q.id = s.reg.NextID()
	q.rc.Store(1)
	s.reg.Register(proto.KindQueue, q)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(q.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

func hRetainCommandQueue(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindQueue, id); !ok {
		return replyStatus(s.conn, proto.InvalidQueue)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseCommandQueue(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindQueue, id); !ok {
		return replyStatus(s.conn, proto.InvalidQueue)
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetCommandQueueInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	q, found, rerr := lookupTyped[*Queue](s, proto.KindQueue, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamQueueContext:
		payload = le64(q.Context)
	case proto.ParamQueueDevice:
		payload = le64(q.Device)
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

// hFlush and hFinish are both no-ops against the software device: every
// enqueue in this implementation already executes and settles its event
// synchronously or via its own transfer worker, so there is nothing
// outstanding for the queue to drain (spec §5, out-of-order queues are
// accepted but not actually reordered).
func hFlush(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Queue](s, proto.KindQueue, id); !found {
		return rerr
	}
	return replyStatus(s.conn, proto.Success)
}

func hFinish(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Queue](s, proto.KindQueue, id); !found {
		return rerr
	}
	return replyStatus(s.conn, proto.Success)
}
