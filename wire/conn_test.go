package wire_test

import (
	"net"
	"testing"

	"github.com/sanguinariojoe/oclandgo/wire"
)

func pipe() (*wire.Conn, *wire.Conn) {
	a, b := net.Pipe()
	return wire.NewConn(a), wire.NewConn(b)
}

func TestScalarRoundTrip(t *testing.T) {
	w, r := pipe()
	defer w.Close()
	defer r.Close()

	go func() {
		w.WriteU32(0xdeadbeef)
		w.WriteI32(-7)
		w.WriteU64(1 << 40)
		w.WriteBool(true)
		w.Flush()
	}()

	if v, err := r.ReadU32(); err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadU32: got %d, %v", v, err)
	}
	if v, err := r.ReadI32(); err != nil || v != -7 {
		t.Fatalf("ReadI32: got %d, %v", v, err)
	}
	if v, err := r.ReadU64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadU64: got %d, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool: got %v, %v", v, err)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	w, r := pipe()
	defer w.Close()
	defer r.Close()

	payload := []byte("kernel test(x,y,z,i0,N) { z[i]=x[i]*y[i]; }")
	go func() {
		w.WriteBytes(payload)
		w.WriteString("")
		w.Flush()
	}()

	got, err := r.ReadBytes()
	if err != nil || string(got) != string(payload) {
		t.Fatalf("ReadBytes: got %q, %v", got, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "" {
		t.Fatalf("ReadString: got %q, %v", s, err)
	}
}

func TestPointerRoundTrip(t *testing.T) {
	w, r := pipe()
	defer w.Close()
	defer r.Close()

	p := wire.Pointer{Kind: wire.PointerHandle, ID: 42}
	go func() {
		w.WritePointer(p)
		w.Flush()
	}()

	got, err := r.ReadPointer()
	if err != nil || got != p {
		t.Fatalf("ReadPointer: got %+v, %v", got, err)
	}
}

func TestPointerMismatchedKindIsFatal(t *testing.T) {
	w, r := pipe()
	defer w.Close()
	defer r.Close()

	go func() {
		w.WriteRaw([]byte{7}) // not a valid PointerKind
		w.WriteU64(0)
		w.Flush()
	}()

	if _, err := r.ReadPointer(); err == nil {
		t.Fatal("expected error for mismatched pointer-kind tag")
	}
	if !r.Bad() {
		t.Fatal("connection should be marked bad after a framing error")
	}
}

func TestZeroLengthBytesRoundTrip(t *testing.T) {
	w, r := pipe()
	defer w.Close()
	defer r.Close()

	go func() {
		w.WriteBytes(nil)
		w.Flush()
	}()

	got, err := r.ReadBytes()
	if err != nil || len(got) != 0 {
		t.Fatalf("ReadBytes: got %v, %v", got, err)
	}
}
