package server

import (
	"encoding/binary"

	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagGetPlatformIDs, hGetPlatformIDs)
	register(proto.TagGetPlatformInfo, hGetPlatformInfo)
	register(proto.TagGetDeviceIDs, hGetDeviceIDs)
	register(proto.TagGetDeviceInfo, hGetDeviceInfo)
	register(proto.TagCreateSubDevices, hCreateSubDevices)
	register(proto.TagRetainDevice, hRetainDevice)
	register(proto.TagReleaseDevice, hReleaseDevice)
}

// bootstrap registers the accelerator's static platform/device topology
// once per session (spec §8 scenario 1: platform handles must be stable
// and distinct across repeated GetPlatformIDs calls).
func (s *Session) bootstrap() {
	for _, p := range s.dev.Platforms() {
		plat := &Platform{Info: p}
		plat.id = s.reg.NextID()
		plat.rc.Store(1)
		s.reg.Register(proto.KindPlatform, plat)
		s.platformIDs = append(s.platformIDs, plat.id)

		for _, d := range s.dev.Devices(0) {
			dev := &Device{Info: d, Plat: plat.id}
			dev.id = s.reg.NextID()
			dev.rc.Store(1)
			s.reg.Register(proto.KindDevice, dev)
			s.deviceIDs = append(s.deviceIDs, dev.id)
		}
	}
}

func writeU64List(s *Session, ids []uint64) error {
	if err := s.conn.WriteU32(uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.conn.WriteU64(id); err != nil {
			return err
		}
	}
	return s.conn.Flush()
}

func hGetPlatformIDs(s *Session) error {
	_, err := s.conn.ReadU32() // requested max entries; server always reports the full set
	if err != nil {
		return err
	}
	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	return writeU64List(s, s.platformIDs)
}

func hGetDeviceIDs(s *Session) error {
	platID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	plat, found, rerr := lookupTyped[*Platform](s, proto.KindPlatform, platID)
	if !found {
		return rerr
	}
	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	var ids []uint64
	for _, id := range s.deviceIDs {
		d, ok := s.reg.Lookup(proto.KindDevice, id)
		if !ok {
			continue
		}
		if d.(*Device).Plat == plat.id {
			ids = append(ids, id)
		}
	}
	return writeU64List(s, ids)
}

func hGetPlatformInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	plat, found, rerr := lookupTyped[*Platform](s, proto.KindPlatform, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamName:
		payload = []byte(plat.Info.Name)
	case proto.ParamVendor:
		payload = []byte(plat.Info.Vendor)
	case proto.ParamVersion:
		payload = []byte(plat.Info.Version)
	case proto.ParamProfile:
		payload = []byte(plat.Info.Profile)
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

func hGetDeviceInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	dev, found, rerr := lookupTyped[*Device](s, proto.KindDevice, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamName:
		payload = []byte(dev.Info.Name)
	case proto.ParamMaxWorkGroupSize:
		payload = le64(uint64(dev.Info.MaxWGSize))
	case proto.ParamGlobalMemSize:
		payload = le64(dev.Info.GlobalMem)
	case proto.ParamMaxComputeUnits:
		payload = le64(uint64(dev.Info.ComputeUnits))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

func hCreateSubDevices(s *Session) error {
	// no sub-device partitioning in the software device; fail per the
	// veneer's argument-sanity contract (spec §4.8 treats unsupported
	// object-creation shapes as invalid-value).
	return replyStatus(s.conn, proto.InvalidValue)
}

func hRetainDevice(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindDevice, id); !ok {
		return replyStatus(s.conn, proto.InvalidDevice)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseDevice(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindDevice, id); !ok {
		return replyStatus(s.conn, proto.InvalidDevice)
	}
	return replyStatus(s.conn, proto.Success)
}

// replyInfo writes the size-query-then-payload reply shape (spec §4.4).
func replyInfo(s *Session, st proto.Status, payload []byte) error {
	if err := s.conn.WriteI32(int32(st)); err != nil {
		return err
	}
	if err := s.conn.WriteSize(uint64(len(payload))); err != nil {
		return err
	}
	if err := s.conn.WriteRaw(payload); err != nil {
		return err
	}
	return s.conn.Flush()
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
