// Package runtime declares the local-accelerator-runtime interface the
// server dispatcher (C6) drives. It has no teacher analogue in the
// retrieved pack — no example repo executes GPU kernels — so it is
// implemented directly against the compute API's own semantics and kept
// deliberately thin: it exists so the protocol, registry, and
// async-transfer machinery this repo's spec is actually about can be
// exercised end-to-end without cgo or real hardware. See
// runtime/cpudevice for the one provided implementation.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package runtime

import "context"

// Platform and Device describe the static topology the server exposes
// through GetPlatformIDs/GetDeviceIDs.
type Platform struct {
	Name, Vendor, Version, Profile string
}

type Device struct {
	Name       string
	MaxWGSize  int
	GlobalMem  uint64
	ComputeUnits int
}

// Kernel is a registered NDRange body: given global work-item index idx
// and the kernel's bound arguments, it mutates Args in place. Real
// drivers compile OpenCL C; this software device instead looks up a
// closure registered under the program's source text (see cpudevice's
// kernel catalog), which is sufficient to validate the wire protocol's
// NDRange/argument-passing machinery end-to-end.
type Kernel func(idx int, args []Arg)

// Arg mirrors the client's per-index kernel argument record (spec §3
// "Kernel arguments"): a raw value buffer, or (for __global/__constant
// memory references) a pointer into a MemObject's backing bytes.
type Arg struct {
	Value []byte
	Mem   *MemObject // nil unless this argument is a buffer reference
}

type MemObject struct {
	Bytes []byte
}

// Accelerator is the seam between the protocol/registry core and a real
// driver. A production build would implement this over cgo bindings to
// the vendor runtime; this repo ships only the software device.
type Accelerator interface {
	Platforms() []Platform
	Devices(platform int) []Device

	AllocBuffer(size int) (*MemObject, error)
	FreeBuffer(m *MemObject)

	EnqueueRead(ctx context.Context, m *MemObject, offset int, dst []byte) error
	EnqueueWrite(ctx context.Context, m *MemObject, offset int, src []byte) error
	EnqueueCopy(ctx context.Context, src, dst *MemObject, srcOff, dstOff, size int) error
	EnqueueFill(ctx context.Context, m *MemObject, offset int, pattern []byte, size int) error

	// Build resolves source text to a runnable kernel catalog; an unknown
	// kernel name within a known source is a caller (build) error, not a
	// runtime one.
	Build(source string) (Program, error)
}

type Program interface {
	Kernel(name string) (Kernel, int /*numArgs*/, error)
	// Names lists the kernel entry points CreateKernelsInProgram should
	// instantiate. Real drivers parse this from compiled module symbols;
	// the software device recovers it from the source signature it parsed
	// at Build time.
	Names() []string
}
