// Package icd is the argument-sanity and handle-conversion veneer (C8):
// one function per wrapped entry point, shaped after the compute API's
// own signatures but expressed in idiomatic Go rather than as a literal
// cgo ABI (see DESIGN.md, "Open Question: ICD ABI"). Every function is a
// thin wrapper over `client`: it translates handles, applies the
// argument checks the real loader would perform before ever reaching a
// driver, and maps the wire protocol's Status back to the compute API's
// cl_int error codes.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package icd

import "github.com/sanguinariojoe/oclandgo/proto"

// Handle types. All of them are, underneath, the client package's
// client-local object identities; the veneer never hands out the
// server's own remote IDs.
type (
	PlatformID   = uint64
	DeviceID     = uint64
	Context      = uint64
	CommandQueue = uint64
	Mem          = uint64
	Sampler      = uint64
	Program      = uint64
	Kernel       = uint64
	Event        = uint64
	MappedPtr    = uint64 // stand-in for the host pointer clEnqueueMapBuffer returns
)

// Int mirrors cl_int: zero is success, negative values are the standard
// error codes.
type Int int32

// Bitfield mirrors cl_bitfield-family types (cl_mem_flags, cl_map_flags,
// cl_command_queue_properties, ...).
type Bitfield = uint64

// The compute API's standard status codes (cl.h), limited to the subset
// this implementation can actually produce.
const (
	Success                     Int = 0
	CompilerNotAvailable        Int = -3
	OutOfResources              Int = -5
	OutOfHostMemory             Int = -6
	BuildProgramFailure         Int = -11
	MapFailure                  Int = -12
	ExecStatusErrorForEventList Int = -14
	InvalidValue                Int = -30
	InvalidDeviceType           Int = -31
	InvalidPlatform             Int = -32
	InvalidDevice               Int = -33
	InvalidContext              Int = -34
	InvalidQueueProperties      Int = -35
	InvalidCommandQueue         Int = -36
	InvalidHostPtr              Int = -37
	InvalidMemObject            Int = -38
	InvalidSampler              Int = -41
	InvalidBinary               Int = -42
	InvalidProgram              Int = -44
	InvalidProgramExecutable    Int = -45
	InvalidKernelName           Int = -46
	InvalidKernel               Int = -48
	InvalidArgIndex             Int = -49
	InvalidArgValue             Int = -50
	InvalidKernelArgs           Int = -52
	InvalidEventWaitList        Int = -57
	InvalidEvent                Int = -58
	InvalidOperation            Int = -59
	InvalidGLObject             Int = -60
	PlatformNotFoundKHR         Int = -1001
)

// Memory object flags (cl_mem_flags), mirroring client.Mem* so a veneer
// caller never has to import the client package for these.
const (
	MemReadWrite    Bitfield = 1 << 0
	MemWriteOnly    Bitfield = 1 << 1
	MemReadOnly     Bitfield = 1 << 2
	MemUseHostPtr   Bitfield = 1 << 3
	MemAllocHostPtr Bitfield = 1 << 4
	MemCopyHostPtr  Bitfield = 1 << 5
)

// Map flags (cl_map_flags).
const (
	MapRead                  Bitfield = 1 << 0
	MapWrite                 Bitfield = 1 << 1
	MapWriteInvalidateRegion Bitfield = 1 << 2
)

// toInt maps a wire-level error to the compute API's cl_int. A nil error
// is success; a protocol Status maps onto its named counterpart; anything
// else (a transport failure: closed connection, I/O error) surfaces as
// out-of-resources, the catch-all the real loader uses for a driver that
// could not be reached.
func toInt(err error) Int {
	if err == nil {
		return Success
	}
	st, ok := err.(proto.Status)
	if !ok {
		return OutOfResources
	}
	switch st {
	case proto.Success:
		return Success
	case proto.InvalidValue:
		return InvalidValue
	case proto.InvalidPlatform:
		return InvalidPlatform
	case proto.InvalidDevice:
		return InvalidDevice
	case proto.InvalidContext:
		return InvalidContext
	case proto.InvalidQueue:
		return InvalidCommandQueue
	case proto.InvalidMemObject:
		return InvalidMemObject
	case proto.InvalidSampler:
		return InvalidSampler
	case proto.InvalidProgram:
		return InvalidProgram
	case proto.InvalidKernel:
		return InvalidKernel
	case proto.InvalidEvent:
		return InvalidEvent
	case proto.InvalidEventWaitList:
		return InvalidEventWaitList
	case proto.InvalidOperation:
		return InvalidOperation
	case proto.InvalidGLObject:
		return InvalidGLObject
	case proto.InvalidArgIndex:
		return InvalidArgIndex
	case proto.InvalidArgValue:
		return InvalidArgValue
	case proto.InvalidKernelArgs:
		return InvalidKernelArgs
	case proto.OutOfHostMemory:
		return OutOfHostMemory
	case proto.OutOfResources:
		return OutOfResources
	case proto.MapFailure:
		return MapFailure
	case proto.CompilerNotAvailable:
		return CompilerNotAvailable
	case proto.BuildProgramFailure:
		return BuildProgramFailure
	case proto.PlatformNotFoundKhr:
		return PlatformNotFoundKHR
	case proto.ExecStatusErrorForEventsInWaitList:
		return ExecStatusErrorForEventList
	default:
		return OutOfResources
	}
}
