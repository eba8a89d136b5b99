package server

import (
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagCreateProgramWithSource, hCreateProgramWithSource)
	register(proto.TagCreateProgramWithBinary, hCreateProgramWithBinary)
	register(proto.TagCreateProgramWithBuiltInKernels, hCreateProgramWithBuiltInKernels)
	register(proto.TagRetainProgram, hRetainProgram)
	register(proto.TagReleaseProgram, hReleaseProgram)
	register(proto.TagBuildProgram, hBuildProgram)
	register(proto.TagCompileProgram, hCompileProgram)
	register(proto.TagLinkProgram, hLinkProgram)
	register(proto.TagUnloadPlatformCompiler, hUnloadPlatformCompiler)
	register(proto.TagGetProgramInfo, hGetProgramInfo)
	register(proto.TagGetProgramBuildInfo, hGetProgramBuildInfo)
}

func hCreateProgramWithSource(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	src, err := s.conn.ReadString()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	p := &Program{Context: ctxID, Source: src}
	p.id = s.reg.NextID()
	p.rc.Store(1)
	s.reg.Register(proto.KindProgram, p)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(p.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

// hCreateProgramWithBinary treats the supplied binary as opaque source
// text: the software device has no real compiled-module format, so a
// "binary" program is built the same way a source program is, by pattern
// matching the bytes as if they were the original source (spec's
// original_source notes this entry point exists mainly so a client that
// cached a previous build's binary can skip recompilation; behaviorally it
// must still produce a working program here).
func hCreateProgramWithBinary(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	devID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	bin, err := s.conn.ReadBytes()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	if _, found, rerr := lookupTyped[*Device](s, proto.KindDevice, devID); !found {
		return rerr
	}
	p := &Program{Context: ctxID, Source: string(bin), Binary: bin}
	p.id = s.reg.NextID()
	p.rc.Store(1)
	s.reg.Register(proto.KindProgram, p)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(p.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

// hCreateProgramWithBuiltInKernels has no built-in kernel catalog to draw
// from in the software device, so it always fails invalid-value.
func hCreateProgramWithBuiltInKernels(s *Session) error {
	return replyStatus(s.conn, proto.InvalidValue)
}

func hRetainProgram(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindProgram, id); !ok {
		return replyStatus(s.conn, proto.InvalidProgram)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseProgram(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindProgram, id); !ok {
		return replyStatus(s.conn, proto.InvalidProgram)
	}
	return replyStatus(s.conn, proto.Success)
}

// hBuildProgram rejects a non-null completion callback with
// out-of-resources, matching the context-creation policy (spec §4.8).
func hBuildProgram(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	hasCallback, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	p, found, rerr := lookupTyped[*Program](s, proto.KindProgram, id)
	if !found {
		return rerr
	}
	if hasCallback {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	prog, err := s.dev.Build(p.Source)
	if err != nil {
		p.Built = false
		return replyStatus(s.conn, proto.BuildProgramFailure)
	}
	p.Built = true
	p.Compiled = prog
	return replyStatus(s.conn, proto.Success)
}

// hCompileProgram and hLinkProgram: this implementation has no separable
// compile/link pipeline (Build already does both), so compile is a no-op
// success and link simply rejects with invalid-value — preserving the
// resolved Open Question that a null-input-programs LinkProgram call must
// still surface invalid-value rather than crash the session.
func hCompileProgram(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	hasCallback, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Program](s, proto.KindProgram, id); !found {
		return rerr
	}
	if hasCallback {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	return replyStatus(s.conn, proto.Success)
}

func hLinkProgram(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	n, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if _, err := s.conn.ReadU64(); err != nil {
			return err
		}
	}
	hasCallback, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	if hasCallback {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	return replyStatus(s.conn, proto.InvalidValue)
}

func hUnloadPlatformCompiler(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Platform](s, proto.KindPlatform, id); !found {
		return rerr
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetProgramInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	p, found, rerr := lookupTyped[*Program](s, proto.KindProgram, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamProgramSource:
		payload = []byte(p.Source)
	case proto.ParamProgramBinarySizes:
		payload = le64(uint64(len(p.Binary)))
	case proto.ParamProgramBinaries:
		payload = p.Binary
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

func hGetProgramBuildInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	devID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	p, found, rerr := lookupTyped[*Program](s, proto.KindProgram, id)
	if !found {
		return rerr
	}
	if _, found, rerr := lookupTyped[*Device](s, proto.KindDevice, devID); !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamProgramBuildStatus:
		v := int32(0) // CL_BUILD_NONE-equivalent
		if p.Built {
			v = 1 // built successfully
		}
		payload = le64(uint64(uint32(v)))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}
