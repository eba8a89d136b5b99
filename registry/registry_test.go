package registry_test

import (
	"testing"

	"github.com/sanguinariojoe/oclandgo/ocatomic"
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/registry"
)

type fakeHandle struct {
	id uint64
	rc ocatomic.Int32
}

func (h *fakeHandle) HandleID() uint64            { return h.id }
func (h *fakeHandle) Refcount() *ocatomic.Int32   { return &h.rc }

func newHandle(id uint64) *fakeHandle {
	h := &fakeHandle{id: id}
	h.rc.Store(1)
	return h
}

func TestNextIDMonotonicAndNeverZero(t *testing.T) {
	r := registry.New()
	seen := map[uint64]bool{}
	for i := 0; i < 100; i++ {
		id := r.NextID()
		if id == 0 {
			t.Fatal("NextID issued 0, reserved as the null sentinel")
		}
		if seen[id] {
			t.Fatalf("NextID repeated %d", id)
		}
		seen[id] = true
	}
}

func TestRegisterLookupUnregister(t *testing.T) {
	r := registry.New()
	h := newHandle(r.NextID())
	r.Register(proto.KindContext, h)

	if !r.Has(proto.KindContext, h.id) {
		t.Fatal("expected handle to be present after Register")
	}
	got, ok := r.Lookup(proto.KindContext, h.id)
	if !ok || got != h {
		t.Fatalf("Lookup returned %v, %v", got, ok)
	}

	r.Unregister(proto.KindContext, h.id)
	if r.Has(proto.KindContext, h.id) {
		t.Fatal("expected handle gone after Unregister")
	}
}

func TestRetainReleaseLifecycle(t *testing.T) {
	r := registry.New()
	h := newHandle(r.NextID())
	r.Register(proto.KindMem, h)

	if n, ok := r.Retain(proto.KindMem, h.id); !ok || n != 2 {
		t.Fatalf("Retain: got %d, %v", n, ok)
	}

	if n, zero, ok := r.Release(proto.KindMem, h.id); !ok || zero || n != 1 {
		t.Fatalf("Release (1st): got %d, %v, %v", n, zero, ok)
	}
	if !r.Has(proto.KindMem, h.id) {
		t.Fatal("handle should still be live with refcount 1")
	}

	if n, zero, ok := r.Release(proto.KindMem, h.id); !ok || !zero || n != 0 {
		t.Fatalf("Release (2nd): got %d, %v, %v", n, zero, ok)
	}
	if r.Has(proto.KindMem, h.id) {
		t.Fatal("handle should be unregistered once refcount reaches zero")
	}
}

func TestReleaseUnknownHandle(t *testing.T) {
	r := registry.New()
	if _, _, ok := r.Release(proto.KindEvent, 999); ok {
		t.Fatal("expected ok=false releasing an unknown handle")
	}
}

func TestCountPerKindIsolation(t *testing.T) {
	r := registry.New()
	r.Register(proto.KindProgram, newHandle(r.NextID()))
	r.Register(proto.KindProgram, newHandle(r.NextID()))
	r.Register(proto.KindKernel, newHandle(r.NextID()))

	if n := r.Count(proto.KindProgram); n != 2 {
		t.Fatalf("Count(KindProgram) = %d, want 2", n)
	}
	if n := r.Count(proto.KindKernel); n != 1 {
		t.Fatalf("Count(KindKernel) = %d, want 1", n)
	}
	if n := r.Count(proto.KindEvent); n != 0 {
		t.Fatalf("Count(KindEvent) = %d, want 0", n)
	}
}
