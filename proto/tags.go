package proto

// Tag is the u32 sent first in every request (spec §4.4). The set is
// closed and corresponds one-to-one with the wrapped compute-API entry
// points (spec §6). Values are stable for the lifetime of a connection's
// protocol revision; there is no negotiation (spec §9 Open Question).
type Tag uint32

const (
	// platform / device
	TagGetPlatformIDs Tag = iota + 1
	TagGetPlatformInfo
	TagGetDeviceIDs
	TagGetDeviceInfo
	TagCreateSubDevices
	TagRetainDevice
	TagReleaseDevice

	// context
	TagCreateContext
	TagCreateContextFromType
	TagRetainContext
	TagReleaseContext
	TagGetContextInfo

	// command queue
	TagCreateCommandQueue
	TagRetainCommandQueue
	TagReleaseCommandQueue
	TagGetCommandQueueInfo
	TagFlush
	TagFinish

	// memory objects
	TagCreateBuffer
	TagCreateSubBuffer
	TagCreateImage
	TagRetainMemObject
	TagReleaseMemObject
	TagGetMemObjectInfo
	TagGetImageInfo
	TagGetSupportedImageFormats
	TagSetMemObjectDestructorCallback

	// samplers
	TagCreateSampler
	TagRetainSampler
	TagReleaseSampler
	TagGetSamplerInfo

	// programs
	TagCreateProgramWithSource
	TagCreateProgramWithBinary
	TagCreateProgramWithBuiltInKernels
	TagRetainProgram
	TagReleaseProgram
	TagBuildProgram
	TagCompileProgram
	TagLinkProgram
	TagUnloadPlatformCompiler
	TagGetProgramInfo
	TagGetProgramBuildInfo

	// kernels
	TagCreateKernel
	TagCreateKernelsInProgram
	TagRetainKernel
	TagReleaseKernel
	TagSetKernelArg
	TagGetKernelInfo
	TagGetKernelArgInfo
	TagGetKernelWorkGroupInfo

	// events
	TagWaitForEvents
	TagGetEventInfo
	TagRetainEvent
	TagReleaseEvent
	TagCreateUserEvent
	TagSetUserEventStatus
	TagSetEventCallback
	TagGetEventProfilingInfo

	// enqueued commands
	TagEnqueueReadBuffer
	TagEnqueueWriteBuffer
	TagEnqueueReadBufferRect
	TagEnqueueWriteBufferRect
	TagEnqueueCopyBuffer
	TagEnqueueCopyBufferRect
	TagEnqueueFillBuffer
	TagEnqueueReadImage
	TagEnqueueWriteImage
	TagEnqueueCopyImage
	TagEnqueueCopyImageToBuffer
	TagEnqueueCopyBufferToImage
	TagEnqueueFillImage
	// NOTE: map buffer / map image / unmap have no wire tags — they are
	// synthesised entirely on the client out of EnqueueReadBuffer /
	// EnqueueWriteBuffer (spec §4.8, §6).
	TagEnqueueMigrateMemObjects
	TagEnqueueNDRangeKernel
	TagEnqueueTask
	TagEnqueueNativeKernel
	TagEnqueueMarkerWithWaitList
	TagEnqueueBarrierWithWaitList
	TagEnqueueMarker       // deprecated, delegates to MarkerWithWaitList
	TagEnqueueWaitForEvents // deprecated, delegates to WaitForEvents semantics
	TagEnqueueBarrier      // deprecated, delegates to BarrierWithWaitList

	// deprecated image creation, delegates to descriptor form
	TagCreateImage2D
	TagCreateImage3D

	// graphics interop — always fail invalid-gl-object
	TagCreateFromGLBuffer
	TagCreateFromGLTexture2D
	TagCreateFromGLTexture3D
	TagCreateFromGLRenderbuffer
	TagEnqueueAcquireGLObjects
	TagEnqueueReleaseGLObjects
	TagGetGLObjectInfo

	// misc
	TagUnloadCompiler
	TagGetExtensionFunctionAddress

	maxTag
)

var tagNames = map[Tag]string{
	TagGetPlatformIDs:                  "GetPlatformIDs",
	TagGetPlatformInfo:                 "GetPlatformInfo",
	TagGetDeviceIDs:                    "GetDeviceIDs",
	TagGetDeviceInfo:                   "GetDeviceInfo",
	TagCreateSubDevices:                "CreateSubDevices",
	TagRetainDevice:                    "RetainDevice",
	TagReleaseDevice:                   "ReleaseDevice",
	TagCreateContext:                   "CreateContext",
	TagCreateContextFromType:           "CreateContextFromType",
	TagRetainContext:                   "RetainContext",
	TagReleaseContext:                  "ReleaseContext",
	TagGetContextInfo:                  "GetContextInfo",
	TagCreateCommandQueue:              "CreateCommandQueue",
	TagRetainCommandQueue:              "RetainCommandQueue",
	TagReleaseCommandQueue:             "ReleaseCommandQueue",
	TagGetCommandQueueInfo:             "GetCommandQueueInfo",
	TagFlush:                           "Flush",
	TagFinish:                          "Finish",
	TagCreateBuffer:                    "CreateBuffer",
	TagCreateSubBuffer:                 "CreateSubBuffer",
	TagCreateImage:                     "CreateImage",
	TagRetainMemObject:                 "RetainMemObject",
	TagReleaseMemObject:                "ReleaseMemObject",
	TagGetMemObjectInfo:                "GetMemObjectInfo",
	TagGetImageInfo:                    "GetImageInfo",
	TagGetSupportedImageFormats:        "GetSupportedImageFormats",
	TagSetMemObjectDestructorCallback:  "SetMemObjectDestructorCallback",
	TagCreateSampler:                   "CreateSampler",
	TagRetainSampler:                   "RetainSampler",
	TagReleaseSampler:                  "ReleaseSampler",
	TagGetSamplerInfo:                  "GetSamplerInfo",
	TagCreateProgramWithSource:         "CreateProgramWithSource",
	TagCreateProgramWithBinary:         "CreateProgramWithBinary",
	TagCreateProgramWithBuiltInKernels: "CreateProgramWithBuiltInKernels",
	TagRetainProgram:                   "RetainProgram",
	TagReleaseProgram:                  "ReleaseProgram",
	TagBuildProgram:                    "BuildProgram",
	TagCompileProgram:                  "CompileProgram",
	TagLinkProgram:                     "LinkProgram",
	TagUnloadPlatformCompiler:          "UnloadPlatformCompiler",
	TagGetProgramInfo:                  "GetProgramInfo",
	TagGetProgramBuildInfo:             "GetProgramBuildInfo",
	TagCreateKernel:                    "CreateKernel",
	TagCreateKernelsInProgram:          "CreateKernelsInProgram",
	TagRetainKernel:                    "RetainKernel",
	TagReleaseKernel:                   "ReleaseKernel",
	TagSetKernelArg:                    "SetKernelArg",
	TagGetKernelInfo:                   "GetKernelInfo",
	TagGetKernelArgInfo:                "GetKernelArgInfo",
	TagGetKernelWorkGroupInfo:          "GetKernelWorkGroupInfo",
	TagWaitForEvents:                   "WaitForEvents",
	TagGetEventInfo:                    "GetEventInfo",
	TagRetainEvent:                     "RetainEvent",
	TagReleaseEvent:                    "ReleaseEvent",
	TagCreateUserEvent:                 "CreateUserEvent",
	TagSetUserEventStatus:              "SetUserEventStatus",
	TagSetEventCallback:                "SetEventCallback",
	TagGetEventProfilingInfo:           "GetEventProfilingInfo",
	TagEnqueueReadBuffer:               "EnqueueReadBuffer",
	TagEnqueueWriteBuffer:              "EnqueueWriteBuffer",
	TagEnqueueReadBufferRect:           "EnqueueReadBufferRect",
	TagEnqueueWriteBufferRect:          "EnqueueWriteBufferRect",
	TagEnqueueCopyBuffer:               "EnqueueCopyBuffer",
	TagEnqueueCopyBufferRect:           "EnqueueCopyBufferRect",
	TagEnqueueFillBuffer:               "EnqueueFillBuffer",
	TagEnqueueReadImage:                "EnqueueReadImage",
	TagEnqueueWriteImage:               "EnqueueWriteImage",
	TagEnqueueCopyImage:                "EnqueueCopyImage",
	TagEnqueueCopyImageToBuffer:        "EnqueueCopyImageToBuffer",
	TagEnqueueCopyBufferToImage:        "EnqueueCopyBufferToImage",
	TagEnqueueFillImage:                "EnqueueFillImage",
	TagEnqueueMigrateMemObjects:        "EnqueueMigrateMemObjects",
	TagEnqueueNDRangeKernel:            "EnqueueNDRangeKernel",
	TagEnqueueTask:                     "EnqueueTask",
	TagEnqueueNativeKernel:             "EnqueueNativeKernel",
	TagEnqueueMarkerWithWaitList:       "EnqueueMarkerWithWaitList",
	TagEnqueueBarrierWithWaitList:      "EnqueueBarrierWithWaitList",
	TagEnqueueMarker:                  "EnqueueMarker",
	TagEnqueueWaitForEvents:           "EnqueueWaitForEvents",
	TagEnqueueBarrier:                 "EnqueueBarrier",
	TagCreateImage2D:                   "CreateImage2D",
	TagCreateImage3D:                   "CreateImage3D",
	TagCreateFromGLBuffer:              "CreateFromGLBuffer",
	TagCreateFromGLTexture2D:           "CreateFromGLTexture2D",
	TagCreateFromGLTexture3D:           "CreateFromGLTexture3D",
	TagCreateFromGLRenderbuffer:        "CreateFromGLRenderbuffer",
	TagEnqueueAcquireGLObjects:         "EnqueueAcquireGLObjects",
	TagEnqueueReleaseGLObjects:         "EnqueueReleaseGLObjects",
	TagGetGLObjectInfo:                 "GetGLObjectInfo",
	TagUnloadCompiler:                  "UnloadCompiler",
	TagGetExtensionFunctionAddress:     "GetExtensionFunctionAddress",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "unknown-tag"
}

func (t Tag) Valid() bool { return t > 0 && t < maxTag }

// glTags is the subset that always fails invalid-gl-object (spec §4.8).
var glTags = map[Tag]bool{
	TagCreateFromGLBuffer:      true,
	TagCreateFromGLTexture2D:   true,
	TagCreateFromGLTexture3D:   true,
	TagCreateFromGLRenderbuffer: true,
	TagEnqueueAcquireGLObjects: true,
	TagEnqueueReleaseGLObjects: true,
	TagGetGLObjectInfo:         true,
}

func IsGLTag(t Tag) bool { return glTags[t] }
