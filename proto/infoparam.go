package proto

// Param enumerates the small set of info-query parameter names this
// implementation answers. Real OpenCL has a much larger CL_*_INFO
// surface; per SPEC_FULL.md the ICD veneer (C8) and per-call bodies (C9)
// are mechanical and out of the core's scope, so only the parameters
// exercised by the spec's testable properties and concrete scenarios are
// wired end to end (spec §8).
type Param uint32

const (
	ParamName Param = iota + 1
	ParamVendor
	ParamVersion
	ParamProfile
	ParamExtensions
	ParamMaxWorkGroupSize
	ParamGlobalMemSize
	ParamMaxComputeUnits
	ParamContextDevices
	ParamContextRefCount
	ParamQueueContext
	ParamQueueDevice
	ParamMemSize
	ParamMemFlags
	ParamEventCommandType
	ParamEventCommandExecutionStatus
	ParamEventContext
	ParamEventCommandQueue
	ParamEventProfilingQueued
	ParamEventProfilingSubmit
	ParamEventProfilingStart
	ParamEventProfilingEnd
	ParamKernelFunctionName
	ParamKernelNumArgs
	ParamKernelArgAddressQualifier
	ParamProgramSource
	ParamProgramBinarySizes
	ParamProgramBinaries
	ParamProgramBuildStatus
	ParamSamplerNormalizedCoords
	ParamSamplerAddressingMode
	ParamSamplerFilterMode
)
