// Package ocevent implements the event model (spec §3, §4.3): a
// polymorphic capability set wrapping a remote completion handle with
// local identity, refcount, context/queue/type, participating in
// wait-lists.
//
// Grounded on xact/qui.go's refcount/quiescence idiom and the
// ref-counted-completion pattern in transport/api.go's Obj.prc field
// (teacher: rockstar-0000-aistore).
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package ocevent

import (
	"context"
	"fmt"
	"sync"

	"github.com/sanguinariojoe/oclandgo/cmn/mono"
	"github.com/sanguinariojoe/oclandgo/ocatomic"
)

// Status is the event state machine (spec §3, §4.3): submitted -> running
// -> complete / error.
type Status int32

const (
	Submitted Status = iota
	Running
	Complete
	Error
)

func (s Status) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool { return s == Complete || s == Error }

// Event wraps a remote completion handle with local identity, refcount,
// context/queue/type (spec §3). The refcount is an atomic ocatomic.Int32,
// so a release racing with bulk-transfer workers completing in parallel
// is safe; mu guards the status.
type Event struct {
	ID       uint64
	Context  uint64
	Queue    uint64 // 0 for user events (spec §3)
	CmdType  uint32
	IsUser   bool
	RemoteID uint64 // the server-side runtime event handle

	refcount ocatomic.Int32

	mu       sync.Mutex
	status   Status
	done     chan struct{}
	doneOnce sync.Once

	tsQueued, tsSubmit, tsStart, tsEnd ocatomic.Int64
}

// New creates an event in Submitted state (spec §3: "client-side event
// objects are created the moment a producing command returns
// successfully; they start in submitted").
func New(id, context, queue uint64, cmdType uint32) *Event {
	e := &Event{
		ID: id, Context: context, Queue: queue, CmdType: cmdType,
		status: Submitted,
		done:   make(chan struct{}),
	}
	e.refcount.Store(1)
	e.tsQueued.Store(mono.NanoTime())
	e.tsSubmit.Store(e.tsQueued.Load())
	return e
}

func NewUser(id, context uint64) *Event {
	e := New(id, context, 0, 0)
	e.IsUser = true
	return e
}

func (e *Event) HandleID() uint64            { return e.ID }
func (e *Event) Refcount() *ocatomic.Int32    { return &e.refcount }

func (e *Event) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// SetStatus transitions the event. Per spec §4.3, only the server (for
// non-user events) or an explicit clSetUserEventStatus call (for user
// events) may move an event to Complete/Error; this package does not
// itself enforce that authorization — callers (server handlers, the
// client's user-event path) are the ones that must only invoke SetStatus
// from an authorized place.
func (e *Event) SetStatus(s Status) {
	e.mu.Lock()
	e.status = s
	switch s {
	case Running:
		e.tsStart.Store(mono.NanoTime())
	case Complete, Error:
		e.tsEnd.Store(mono.NanoTime())
	}
	e.mu.Unlock()
	if s.Terminal() {
		e.doneOnce.Do(func() { close(e.done) })
	}
}

// Profiling returns the four profiling timestamps an EventProfilingInfo
// query reports (queued/submit/start/end), per the compute API's
// profiling-info surface.
func (e *Event) Profiling() (queued, submit, start, end int64) {
	return e.tsQueued.Load(), e.tsSubmit.Load(), e.tsStart.Load(), e.tsEnd.Load()
}

// Wait blocks until the event reaches Complete or Error (spec §4.3, §8:
// "the wait returns only after E's status is complete or error").
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitList blocks until every event in the list is terminal (spec §4.3:
// "A wait on a list of events blocks until every event reaches complete").
func WaitList(ctx context.Context, events []*Event) error {
	for _, e := range events {
		if err := e.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SameContext validates invariant I4: "Every event in a wait-list shares
// a context with its target queue" — checked against the queue's context
// id by the caller, which knows the queue→context mapping and passes it
// as ctxID; every event's Context must equal ctxID.
func SameContext(events []*Event, ctxID uint64) error {
	for _, e := range events {
		if e.Context != ctxID {
			return fmt.Errorf("ocevent: event %d belongs to context %d, want %d", e.ID, e.Context, ctxID)
		}
	}
	return nil
}
