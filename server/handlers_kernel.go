package server

import (
	"github.com/sanguinariojoe/oclandgo/proto"
)

func init() {
	register(proto.TagCreateKernel, hCreateKernel)
	register(proto.TagCreateKernelsInProgram, hCreateKernelsInProgram)
	register(proto.TagRetainKernel, hRetainKernel)
	register(proto.TagReleaseKernel, hReleaseKernel)
	register(proto.TagSetKernelArg, hSetKernelArg)
	register(proto.TagGetKernelInfo, hGetKernelInfo)
	register(proto.TagGetKernelArgInfo, hGetKernelArgInfo)
	register(proto.TagGetKernelWorkGroupInfo, hGetKernelWorkGroupInfo)
}

func newKernel(s *Session, p *Program, name string) (*Kernel, error) {
	fn, numArgs, err := p.Compiled.Kernel(name)
	if err != nil {
		return nil, err
	}
	k := &Kernel{Program: p.id, Name: name, NumArgs: numArgs, Args: make([]KernelArg, numArgs), fn: fn}
	k.id = s.reg.NextID()
	k.rc.Store(1)
	s.reg.Register(proto.KindKernel, k)
	return k, nil
}

func hCreateKernel(s *Session) error {
	progID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	name, err := s.conn.ReadString()
	if err != nil {
		return err
	}
	p, found, rerr := lookupTyped[*Program](s, proto.KindProgram, progID)
	if !found {
		return rerr
	}
	if !p.Built {
		return replyStatus(s.conn, proto.InvalidProgram)
	}
	k, err := newKernel(s, p, name)
	if err != nil {
		return replyStatus(s.conn, proto.InvalidValue)
	}

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(k.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

func hCreateKernelsInProgram(s *Session) error {
	progID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	p, found, rerr := lookupTyped[*Program](s, proto.KindProgram, progID)
	if !found {
		return rerr
	}
	if !p.Built {
		return replyStatus(s.conn, proto.InvalidProgram)
	}
	names := p.Compiled.Names()
	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		k, err := newKernel(s, p, name)
		if err != nil {
			continue
		}
		ids = append(ids, k.id)
	}

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	return writeU64List(s, ids)
}

func hRetainKernel(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindKernel, id); !ok {
		return replyStatus(s.conn, proto.InvalidKernel)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseKernel(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, _, ok := s.reg.Release(proto.KindKernel, id); !ok {
		return replyStatus(s.conn, proto.InvalidKernel)
	}
	return replyStatus(s.conn, proto.Success)
}

// hSetKernelArg overwrites the slot at index rather than accumulating
// (spec §8 boundary case: "setting the same kernel argument index twice
// before the kernel is enqueued replaces the prior value, it does not
// duplicate or reject the call").
func hSetKernelArg(s *Session) error {
	kernID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	index, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	isMem, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	var memID uint64
	var raw []byte
	if isMem {
		if memID, err = s.conn.ReadU64(); err != nil {
			return err
		}
	} else {
		if raw, err = s.conn.ReadBytes(); err != nil {
			return err
		}
	}
	k, found, rerr := lookupTyped[*Kernel](s, proto.KindKernel, kernID)
	if !found {
		return rerr
	}
	if int(index) >= k.NumArgs {
		return replyStatus(s.conn, proto.InvalidArgIndex)
	}
	if isMem {
		if !s.reg.Has(proto.KindMem, memID) {
			return replyStatus(s.conn, proto.InvalidMemObject)
		}
		k.Args[index] = KernelArg{Set: true, MemID: memID}
	} else {
		k.Args[index] = KernelArg{Set: true, Bytes: raw}
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetKernelInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	k, found, rerr := lookupTyped[*Kernel](s, proto.KindKernel, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamKernelFunctionName:
		payload = []byte(k.Name)
	case proto.ParamKernelNumArgs:
		payload = le64(uint64(k.NumArgs))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

func hGetKernelArgInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	index, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	k, found, rerr := lookupTyped[*Kernel](s, proto.KindKernel, id)
	if !found {
		return rerr
	}
	if int(index) >= k.NumArgs {
		return replyStatus(s.conn, proto.InvalidArgIndex)
	}
	switch proto.Param(param) {
	case proto.ParamKernelArgAddressQualifier:
		v := uint64(0) // private, unless bound to a mem object
		if k.Args[index].MemID != 0 {
			v = 1 // global
		}
		return replyInfo(s, proto.Success, le64(v))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
}

func hGetKernelWorkGroupInfo(s *Session) error {
	kernID, err := s.conn.ReadU64()
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
	if _, found, rerr := lookupTyped[*Kernel](s, proto.KindKernel, kernID); !found {
		return rerr
	}
	dev, found, rerr := lookupTyped[*Device](s, proto.KindDevice, devID)
	if !found {
		return rerr
	}
	switch proto.Param(param) {
	case proto.ParamMaxWorkGroupSize:
		return replyInfo(s, proto.Success, le64(uint64(dev.Info.MaxWGSize)))
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
}
