package server

import (
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagCreateContext, hCreateContext)
	register(proto.TagCreateContextFromType, hCreateContextFromType)
	register(proto.TagRetainContext, hRetainContext)
	register(proto.TagReleaseContext, hReleaseContext)
	register(proto.TagGetContextInfo, hGetContextInfo)
}

// readContextProps decodes the common "properties + callback" prefix
// shared by CreateContext and CreateContextFromType (spec §4.8: "A
// user-supplied completion callback fails the call with out-of-resources";
// "the context-platform entry, if present, is validated").
func readContextProps(s *Session) (platformID uint64, hasPlatform bool, hasCallback bool, err error) {
	if hasPlatform, err = s.conn.ReadBool(); err != nil {
		return
	}
	if hasPlatform {
		if platformID, err = s.conn.ReadU64(); err != nil {
			return
		}
	}
	hasCallback, err = s.conn.ReadBool()
	return
}

func hCreateContext(s *Session) error {
	n, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	devIDs := make([]uint64, n)
	for i := range devIDs {
		if devIDs[i], err = s.conn.ReadU64(); err != nil {
			return err
		}
	}
	platformID, hasPlatform, hasCallback, err := readContextProps(s)
	if err != nil {
		return err
	}
	if hasCallback {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	if hasPlatform {
		if _, found, rerr := lookupTyped[*Platform](s, proto.KindPlatform, platformID); !found {
			return rerr
		}
	}
	for _, id := range devIDs {
		if !s.reg.Has(proto.KindDevice, id) {
			return replyStatus(s.conn, proto.InvalidDevice)
		}
	}
	ctx := &Context{Devices: devIDs}
	ctx.id = s.reg.NextID()
	ctx.rc.Store(1)
	s.reg.Register(proto.KindContext, ctx)
	logPeerNotice(s, "context %d created", ctx.id)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(ctx.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

func hCreateContextFromType(s *Session) error {
	if _, err := s.conn.ReadU32(); err != nil { // device type bitmask; unused, software device has one device
		return err
	}
	platformID, hasPlatform, hasCallback, err := readContextProps(s)
	if err != nil {
		return err
	}
	if hasCallback {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	if hasPlatform {
		if _, found, rerr := lookupTyped[*Platform](s, proto.KindPlatform, platformID); !found {
			return rerr
		}
	}
	if len(s.deviceIDs) == 0 {
		return replyStatus(s.conn, proto.PlatformNotFoundKhr)
	}
	ctx := &Context{Devices: append([]uint64(nil), s.deviceIDs...)}
	ctx.id = s.reg.NextID()
	ctx.rc.Store(1)
	s.reg.Register(proto.KindContext, ctx)
	logPeerNotice(s, "context %d created (from-type)", ctx.id)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(ctx.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

func hRetainContext(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindContext, id); !ok {
		return replyStatus(s.conn, proto.InvalidContext)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseContext(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindContext, id); !ok {
		return replyStatus(s.conn, proto.InvalidContext)
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetContextInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	ctx, found, rerr := lookupTyped[*Context](s, proto.KindContext, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamContextDevices:
		payload = make([]byte, 0, 8*len(ctx.Devices))
		for _, d := range ctx.Devices {
			payload = append(payload, le64(d)...)
		}
	case proto.ParamContextRefCount:
		payload = le64(uint64(ctx.rc.Load()))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}
