package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

func (c *Conn) CreateKernel(programID uint64, name string) (uint64, error) {
	c.tableMu.Lock()
	p, ok := c.programs[programID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidProgram
	}
	if !p.Built {
		return 0, proto.InvalidProgram
	}
	var localID uint64
	err := c.call(proto.TagCreateKernel, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteString(name); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		remoteID, err := pc.ReadU64()
		if err != nil {
			return err
		}
		localID = c.registerKernel(remoteID, programID, name, 0)
		return nil
	})
	return localID, err
}

func (c *Conn) CreateKernelsInProgram(programID uint64) ([]uint64, error) {
	c.tableMu.Lock()
	p, ok := c.programs[programID]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidProgram
	}
	if !p.Built {
		return nil, proto.InvalidProgram
	}
	var ids []uint64
	err := c.call(proto.TagCreateKernelsInProgram, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		remoteIDs, err := readU64List(pc)
		if err != nil {
			return err
		}
		for _, rid := range remoteIDs {
			ids = append(ids, c.registerKernel(rid, programID, "", 0))
		}
		return nil
	})
	return ids, err
}

func (c *Conn) registerKernel(remoteID, programID uint64, name string, numArgs int) uint64 {
	k := &Kernel{ID: c.nextLocalID(), RemoteID: remoteID, Program: programID, Name: name, NumArgs: numArgs}
	k.refcount.Store(1)
	c.tableMu.Lock()
	c.kernels[k.ID] = k
	c.tableMu.Unlock()
	return k.ID
}

func (c *Conn) RetainKernel(id uint64) error {
	c.tableMu.Lock()
	k, ok := c.kernels[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidKernel
	}
	return c.call(proto.TagRetainKernel, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		k.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseKernel(id uint64) error {
	c.tableMu.Lock()
	k, ok := c.kernels[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidKernel
	}
	return c.call(proto.TagReleaseKernel, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		if k.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.kernels, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// SetKernelArgMem sets a __global/__constant memory argument, recognised
// by the client as a handle reference (spec §3) so it is substituted for
// the callee's remote identity rather than transmitted as opaque bytes.
// Only memory objects are accepted; a sampler ID answers invalid-mem-object.
func (c *Conn) SetKernelArgMem(kernelID uint64, index int, memID uint64) error {
	c.tableMu.Lock()
	k, ok := c.kernels[kernelID]
	m, mok := c.mems[memID]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidKernel
	}
	if !mok {
		return proto.InvalidMemObject
	}
	return c.call(proto.TagSetKernelArg, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(index)); err != nil {
			return err
		}
		if err := pc.WriteBool(true); err != nil {
			return err
		}
		if err := pc.WriteU64(m.RemoteID); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		// Overwrites any prior value at this index (spec §8 boundary case).
		setKernelArgLocal(k, index, KernelArg{Set: true, MemID: memID})
		return nil
	})
}

// SetKernelArgValue sets a plain-value (non-memory) kernel argument.
func (c *Conn) SetKernelArgValue(kernelID uint64, index int, value []byte) error {
	c.tableMu.Lock()
	k, ok := c.kernels[kernelID]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidKernel
	}
	return c.call(proto.TagSetKernelArg, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(index)); err != nil {
			return err
		}
		if err := pc.WriteBool(false); err != nil {
			return err
		}
		if err := pc.WriteBytes(value); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		st, err := readStatus(pc)
		if err != nil {
			return err
		}
		if st != proto.Success {
			return st
		}
		setKernelArgLocal(k, index, KernelArg{Set: true, Bytes: value})
		return nil
	})
}

func setKernelArgLocal(k *Kernel, index int, arg KernelArg) {
	for len(k.Args) <= index {
		k.Args = append(k.Args, KernelArg{})
	}
	k.Args[index] = arg
}

// KernelFunctionName and KernelNumArgs answer GetKernelInfo from the local
// cache once known (spec §4.5); NumArgs is populated lazily from the first
// GetKernelInfo round trip since CreateKernelsInProgram does not report it.
func (c *Conn) KernelFunctionName(id uint64) (string, error) {
	c.tableMu.Lock()
	k, ok := c.kernels[id]
	c.tableMu.Unlock()
	if !ok {
		return "", proto.InvalidKernel
	}
	if k.Name != "" {
		return k.Name, nil
	}
	b, err := c.getKernelInfo(id, proto.ParamKernelFunctionName)
	if err != nil {
		return "", err
	}
	c.tableMu.Lock()
	k.Name = string(b)
	c.tableMu.Unlock()
	return k.Name, nil
}

func (c *Conn) KernelNumArgs(id uint64) (int, error) {
	c.tableMu.Lock()
	k, ok := c.kernels[id]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidKernel
	}
	if k.NumArgs != 0 {
		return k.NumArgs, nil
	}
	b, err := c.getKernelInfo(id, proto.ParamKernelNumArgs)
	if err != nil {
		return 0, err
	}
	n := int(le64ToU64(b))
	c.tableMu.Lock()
	k.NumArgs = n
	c.tableMu.Unlock()
	return n, nil
}

func (c *Conn) getKernelInfo(id uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	k, ok := c.kernels[id]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidKernel
	}
	var payload []byte
	err := c.call(proto.TagGetKernelInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(param)); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		return readInfoReply(pc, &payload)
	})
	return payload, err
}

// KernelArgAddressQualifier answers GetKernelArgInfo from the local
// argument table (spec §4.5): whether index is bound to a buffer
// reference is already known locally, no round trip needed.
func (c *Conn) KernelArgAddressQualifier(id uint64, index int) (uint64, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	k, ok := c.kernels[id]
	if !ok {
		return 0, proto.InvalidKernel
	}
	if index < 0 || index >= len(k.Args) {
		return 0, proto.InvalidArgIndex
	}
	if k.Args[index].MemID != 0 {
		return 1, nil // global
	}
	return 0, nil // private
}

func (c *Conn) KernelWorkGroupMaxSize(kernelID, deviceID uint64) (int, error) {
	c.tableMu.Lock()
	k, ok := c.kernels[kernelID]
	dev, dok := c.devices[deviceID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidKernel
	}
	if !dok {
		return 0, proto.InvalidDevice
	}
	var payload []byte
	err := c.call(proto.TagGetKernelWorkGroupInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(k.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dev.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(proto.ParamMaxWorkGroupSize)); err != nil {
			return err
		}
		if err := pc.Flush(); err != nil {
			return err
		}
		return readInfoReply(pc, &payload)
	})
	if err != nil {
		return 0, err
	}
	return int(le64ToU64(payload)), nil
}
