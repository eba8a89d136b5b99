// Package registry implements the per-connection handle tables (spec §3,
// §4.2): a set of live handles per kind, reference-counted, validated
// eagerly against every inbound frame.
//
// Grounded on xact/xreg/xreg.go's registry-of-entries pattern (teacher:
// rockstar-0000-aistore), specialised to a fixed compile-time enum of
// kinds (proto.Kind) instead of xreg's kind-by-string map, since the
// compute API's handle kinds are closed and known ahead of time.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package registry

import (
	"sync"

	"github.com/sanguinariojoe/oclandgo/ocatomic"
	"github.com/sanguinariojoe/oclandgo/proto"
)

// Handle is the minimal shape every registered object must provide: an
// identity and a mutable refcount (spec I2: refcount >= 1 for every
// handle in its table).
type Handle interface {
	HandleID() uint64
	Refcount() *ocatomic.Int32
}

type table struct {
	mu sync.Mutex // per spec §4.2: mutated only by the dispatcher thread,
	// refcounts are ocatomic.Int32 counters on each handle (see
	// ocevent.Event) — this mutex only protects table membership.
	m map[uint64]Handle
}

func newTable() *table { return &table{m: make(map[uint64]Handle, 16)} }

// Registry holds one table per handle kind for a single connection (spec
// §3 "Connection state (per client)": handle_tables[kind]). The server
// keeps one Registry per accepted connection too.
type Registry struct {
	tables [proto.NumKinds]*table
	nextID ocatomic.Uint32
}

func New() *Registry {
	r := &Registry{}
	for i := range r.tables {
		r.tables[i] = newTable()
	}
	return r
}

// NextID generates a monotonically increasing per-connection identity
// (spec §9: "generate identities monotonically per connection"). Identity
// 0 is never issued so it can serve as a null/absent sentinel.
func (r *Registry) NextID() uint64 {
	return uint64(r.nextID.Add(1))
}

// Register inserts h into kind's table. Per spec I5, callers are
// responsible for not reusing an identity still live in the table; this
// is enforced here defensively by overwrite (last writer wins), since a
// violation would indicate a dispatcher bug, not a protocol-level fault.
func (r *Registry) Register(k proto.Kind, h Handle) {
	t := r.tables[k]
	t.mu.Lock()
	t.m[h.HandleID()] = h
	t.mu.Unlock()
}

func (r *Registry) Unregister(k proto.Kind, id uint64) {
	t := r.tables[k]
	t.mu.Lock()
	delete(t.m, id)
	t.mu.Unlock()
}

func (r *Registry) Has(k proto.Kind, id uint64) bool {
	t := r.tables[k]
	t.mu.Lock()
	_, ok := t.m[id]
	t.mu.Unlock()
	return ok
}

func (r *Registry) Lookup(k proto.Kind, id uint64) (Handle, bool) {
	t := r.tables[k]
	t.mu.Lock()
	h, ok := t.m[id]
	t.mu.Unlock()
	return h, ok
}

// Retain increments h's refcount by one and returns the new value.
func (r *Registry) Retain(k proto.Kind, id uint64) (int32, bool) {
	h, ok := r.Lookup(k, id)
	if !ok {
		return 0, false
	}
	return h.Refcount().Add(1), true
}

// Release decrements h's refcount by one. When the count reaches zero the
// handle is unregistered and releasedToZero is true — the caller (client
// veneer or server handler) is then responsible for the object-type
// release command / local teardown (spec §3 "Reference counts").
func (r *Registry) Release(k proto.Kind, id uint64) (remaining int32, releasedToZero bool, ok bool) {
	h, found := r.Lookup(k, id)
	if !found {
		return 0, false, false
	}
	remaining = h.Refcount().Add(-1)
	if remaining <= 0 {
		r.Unregister(k, id)
		return remaining, true, true
	}
	return remaining, false, true
}

// Count reports the number of live handles of kind k, used by tests to
// assert the no-leak property implied by spec §8.
func (r *Registry) Count(k proto.Kind) int {
	t := r.tables[k]
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
