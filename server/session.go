// Package server implements the dispatcher (C6): one worker per accepted
// client connection, reading a command tag, demuxing to a handler,
// validating handles against the per-connection registry, driving the
// local accelerator runtime, and replying.
//
// Grounded on the dfc package's single-purpose-worker convention and the
// ais dispatch idiom of a tag/action → handler table (teacher:
// rockstar-0000-aistore).
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package server

import (
	"fmt"
	"net"

	"github.com/sanguinariojoe/oclandgo/bulk"
	"github.com/sanguinariojoe/oclandgo/cmn/cos"
	"github.com/sanguinariojoe/oclandgo/cmn/nlog"
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/registry"
	"github.com/sanguinariojoe/oclandgo/runtime"
	"github.com/sanguinariojoe/oclandgo/wire"
)

// Config carries the daemon's network configuration (spec §6): primary
// port defaults to 51000, async-transfer range defaults to 51001..51150.
type Config struct {
	PrimaryPort int
	AsyncPortLo int
	AsyncPortHi int
}

func DefaultConfig() Config {
	return Config{PrimaryPort: 51000, AsyncPortLo: 51001, AsyncPortHi: 51150}
}

// Session is the per-connection state the spec calls out in §3
// ("Connection state (per client)"), mirrored on the server side: a
// primary stream, a reserved callbacks stream, and a handle registry.
type Session struct {
	id        string
	conn      *wire.Conn
	callbacks *wire.Conn
	reg       *registry.Registry
	dev       runtime.Accelerator
	cfg       Config
	peer      string

	transfers   *bulk.Allocator
	platformIDs []uint64
	deviceIDs   []uint64
}

// NewSession wires a freshly accepted primary connection to an
// accelerator backend. The callbacks connection is attached afterwards
// via AttachCallbacks once the server accepts it at session setup (spec
// §4.6: "Every connection has its own callbacks-stream accepted at
// session setup").
func NewSession(nc net.Conn, dev runtime.Accelerator, cfg Config) *Session {
	s := &Session{
		id:        cos.GenSessionID(),
		conn:      wire.NewConn(nc),
		reg:       registry.New(),
		dev:       dev,
		cfg:       cfg,
		peer:      nc.RemoteAddr().String(),
		transfers: bulk.NewAllocator(cfg.AsyncPortLo, cfg.AsyncPortHi),
	}
	s.bootstrap()
	return s
}

func (s *Session) AttachCallbacks(nc net.Conn) { s.callbacks = wire.NewConn(nc) }

// PushEventNotice sends an asynchronous status-change message on the
// callbacks stream (spec §4.6). Best-effort: failures are logged, never
// fatal to the primary stream.
func (s *Session) PushEventNotice(eventID uint64, status int32) {
	if s.callbacks == nil {
		return
	}
	if err := s.callbacks.WriteU64(eventID); err != nil {
		nlog.Warningf("session %s: callbacks push failed: %v", s.id, err)
		return
	}
	if err := s.callbacks.WriteI32(status); err != nil {
		nlog.Warningf("session %s: callbacks push failed: %v", s.id, err)
		return
	}
	_ = s.callbacks.Flush()
}

// logPeerNotice echoes an operator-visible notice line tagging the peer
// address (spec §4.6: "Context creation and context-from-type additionally
// record peer address and echo a notice line for operator visibility").
func logPeerNotice(s *Session, format string, args ...interface{}) {
	nlog.Infof("session %s (%s): "+format, append([]interface{}{s.id, s.peer}, args...)...)
}

type handlerFn func(s *Session) error

var dispatch = map[proto.Tag]handlerFn{}

func register(t proto.Tag, fn handlerFn) { dispatch[t] = fn }

// Serve runs the dispatcher loop for one connection until a fatal
// protocol error or clean disconnect (spec §4.6: "Handler boundaries are
// the commit points: a handler either completes all its sends or the
// connection is abandoned").
func (s *Session) Serve() {
	defer s.conn.Close()
	nlog.Infof("session %s: accepted from %s", s.id, s.peer)
	for {
		tagv, err := s.conn.ReadU32()
		if err != nil {
			if !cos.IsEOF(err) {
				nlog.Warningf("session %s: read tag: %v", s.id, err)
			}
			return
		}
		tag := proto.Tag(tagv)
		if err := s.handle(tag); err != nil {
			nlog.Warningf("session %s: tag %s: %v", s.id, tag, err)
			return
		}
		if s.conn.Bad() {
			return
		}
	}
}

func (s *Session) handle(tag proto.Tag) error {
	if proto.IsGLTag(tag) {
		return replyStatus(s.conn, proto.InvalidGLObject)
	}
	fn, ok := dispatch[tag]
	if !ok {
		nlog.Warningf("session %s: no handler for tag %s", s.id, tag)
		return replyStatus(s.conn, proto.InvalidOperation)
	}
	return fn(s)
}

// replyStatus writes a bare {status} reply and flushes — the common case
// for commands with no additional return fields.
func replyStatus(c *wire.Conn, st proto.Status) error {
	if err := c.WriteI32(int32(st)); err != nil {
		return err
	}
	return c.Flush()
}

// lookupTyped validates an inbound handle reference against kind k. When
// the handle is absent it writes proto.InvalidFor(k) as the full reply
// itself (spec §4.2: "Validation is eager") and returns found=false; the
// caller must then simply return replyErr without writing anything else.
func lookupTyped[T any](s *Session, k proto.Kind, id uint64) (val T, found bool, replyErr error) {
	h, ok := s.reg.Lookup(k, id)
	if !ok {
		return val, false, replyStatus(s.conn, proto.InvalidFor(k))
	}
	t, ok := h.(T)
	if !ok {
		return val, false, fmt.Errorf("session %s: handle %d kind mismatch", s.id, id)
	}
	return t, true, nil
}
