// Package proto is the single source of truth for the ocland wire format:
// the command tag enumeration and the per-command request/reply framing.
// Grounded on transport/api.go's reserved-opcode-range idiom and
// api/apc/actmsg.go's enumerated message-kind constants.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package proto

// Status mirrors the compute API's standard error enumeration (spec §7).
// It is always the first field of every reply.
type Status int32

const (
	Success Status = iota
	InvalidValue
	InvalidPlatform
	InvalidDevice
	InvalidContext
	InvalidQueue
	InvalidMemObject
	InvalidSampler
	InvalidProgram
	InvalidKernel
	InvalidEvent
	InvalidEventWaitList
	InvalidOperation
	InvalidGLObject
	InvalidArgIndex
	InvalidArgValue
	InvalidKernelArgs
	OutOfHostMemory
	OutOfResources
	MapFailure
	CompilerNotAvailable
	BuildProgramFailure
	PlatformNotFoundKhr
	ExecStatusErrorForEventsInWaitList
)

func (s Status) Error() string { return s.String() }

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case InvalidValue:
		return "invalid-value"
	case InvalidPlatform:
		return "invalid-platform"
	case InvalidDevice:
		return "invalid-device"
	case InvalidContext:
		return "invalid-context"
	case InvalidQueue:
		return "invalid-command-queue"
	case InvalidMemObject:
		return "invalid-mem-object"
	case InvalidSampler:
		return "invalid-sampler"
	case InvalidProgram:
		return "invalid-program"
	case InvalidKernel:
		return "invalid-kernel"
	case InvalidEvent:
		return "invalid-event"
	case InvalidEventWaitList:
		return "invalid-event-wait-list"
	case InvalidOperation:
		return "invalid-operation"
	case InvalidGLObject:
		return "invalid-gl-object"
	case InvalidArgIndex:
		return "invalid-arg-index"
	case InvalidArgValue:
		return "invalid-arg-value"
	case InvalidKernelArgs:
		return "invalid-kernel-args"
	case OutOfHostMemory:
		return "out-of-host-memory"
	case OutOfResources:
		return "out-of-resources"
	case MapFailure:
		return "map-failure"
	case CompilerNotAvailable:
		return "compiler-not-available"
	case BuildProgramFailure:
		return "build-program-failure"
	case PlatformNotFoundKhr:
		return "platform-not-found"
	case ExecStatusErrorForEventsInWaitList:
		return "exec-status-error-for-events-in-wait-list"
	default:
		return "unknown-status"
	}
}

// InvalidFor returns the status for "this handle kind was not found" per
// spec §4.2 ("rejected with the protocol's invalid-<kind> status").
func InvalidFor(k Kind) Status {
	switch k {
	case KindPlatform:
		return InvalidPlatform
	case KindDevice:
		return InvalidDevice
	case KindContext:
		return InvalidContext
	case KindQueue:
		return InvalidQueue
	case KindMem:
		return InvalidMemObject
	case KindSampler:
		return InvalidSampler
	case KindProgram:
		return InvalidProgram
	case KindKernel:
		return InvalidKernel
	case KindEvent:
		return InvalidEvent
	default:
		return InvalidValue
	}
}
