package icd_test

import (
	"testing"

	"github.com/sanguinariojoe/oclandgo/icd"
	"github.com/sanguinariojoe/oclandgo/proto"
)

// These exercise only the argument-sanity paths that return before ever
// touching the wrapped connection, so a zero-value ICD (nil client.Conn)
// is safe to call.

func TestCreateBufferRejectsNonPositiveSize(t *testing.T) {
	d := icd.New(nil)
	if _, status := d.CreateBuffer(1, icd.MemReadWrite, 0, nil); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}

func TestCreateBufferRejectsMissingHostPtr(t *testing.T) {
	d := icd.New(nil)
	if _, status := d.CreateBuffer(1, icd.MemCopyHostPtr, 16, nil); status != icd.InvalidHostPtr {
		t.Fatalf("got %v, want InvalidHostPtr", status)
	}
}

func TestCreateSubDevicesAlwaysRejects(t *testing.T) {
	d := icd.New(nil)
	if _, status := d.CreateSubDevices(1); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}

func TestSetUserEventStatusRejectsPositiveNonCompleteCode(t *testing.T) {
	d := icd.New(nil)
	if status := d.SetUserEventStatus(1, 7); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}

func TestWaitForEventsRejectsEmptyList(t *testing.T) {
	d := icd.New(nil)
	if status := d.WaitForEvents(nil); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}

func TestEnqueueNDRangeKernelRejectsBadDimensions(t *testing.T) {
	d := icd.New(nil)
	if _, status := d.EnqueueNDRangeKernel(1, 1, nil, false, nil); status != icd.InvalidValue {
		t.Fatalf("0-dim: got %v, want InvalidValue", status)
	}
	if _, status := d.EnqueueNDRangeKernel(1, 1, []int{1, 2, 3, 4}, false, nil); status != icd.InvalidValue {
		t.Fatalf("4-dim: got %v, want InvalidValue", status)
	}
}

func TestEnqueueMapBufferRejectsNonPositiveSize(t *testing.T) {
	d := icd.New(nil)
	if _, _, _, status := d.EnqueueMapBuffer(1, 1, false, icd.MapRead, 0, 0, false, nil); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}

func TestGetExtensionFunctionAddressIsAStub(t *testing.T) {
	d := icd.New(nil)
	if addr := d.GetExtensionFunctionAddress("clFoo"); addr != 0 {
		t.Fatalf("got %v, want 0 (null)", addr)
	}
}

// GetMemObjectInfo answers an unrecognised param with InvalidValue itself,
// before touching the (nil) connection.
func TestUnknownParamIsInvalidValueBeforeTouchingConn(t *testing.T) {
	d := icd.New(nil)
	if _, status := d.GetMemObjectInfo(1, proto.Param(0xFFFF)); status != icd.InvalidValue {
		t.Fatalf("got %v, want InvalidValue", status)
	}
}
