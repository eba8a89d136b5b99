package server

import (
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagCreateSampler, hCreateSampler)
	register(proto.TagRetainSampler, hRetainSampler)
	register(proto.TagReleaseSampler, hReleaseSampler)
	register(proto.TagGetSamplerInfo, hGetSamplerInfo)
}

func hCreateSampler(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	normalized, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	addressMode, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	filterMode, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	sm := &Sampler{Context: ctxID, Normalized: normalized, AddressMode: addressMode, FilterMode: filterMode}
	sm.id = s.reg.NextID()
	sm.rc.Store(1)
	s.reg.Register(proto.KindSampler, sm)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(sm.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

func hRetainSampler(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindSampler, id); !ok {
		return replyStatus(s.conn, proto.InvalidSampler)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseSampler(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindSampler, id); !ok {
		return replyStatus(s.conn, proto.InvalidSampler)
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetSamplerInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	sm, found, rerr := lookupTyped[*Sampler](s, proto.KindSampler, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamSamplerNormalizedCoords:
		v := uint64(0)
		if sm.Normalized {
			v = 1
		}
		payload = le64(v)
	case proto.ParamSamplerAddressingMode:
		payload = le64(uint64(sm.AddressMode))
	case proto.ParamSamplerFilterMode:
		payload = le64(uint64(sm.FilterMode))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}
