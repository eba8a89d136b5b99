package client

import (
	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/wire"
)

func (c *Conn) CreateProgramWithSource(contextID uint64, source string) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	var localID uint64
	err := c.call(proto.TagCreateProgramWithSource, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteString(source); err != nil {
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
		p := &Program{ID: c.nextLocalID(), RemoteID: remoteID, Context: contextID, Source: source}
		p.refcount.Store(1)
		c.tableMu.Lock()
		c.programs[p.ID] = p
		c.tableMu.Unlock()
		localID = p.ID
		return nil
	})
	return localID, err
}

// CreateProgramWithBinary forwards opaque bytes the way hCreateProgramWithBinary
// consumes them server-side: as a cached build's stand-in source text (spec
// §9 original_source notes on this entry point).
func (c *Conn) CreateProgramWithBinary(contextID, deviceID uint64, binary []byte) (uint64, error) {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	dev, dok := c.devices[deviceID]
	c.tableMu.Unlock()
	if !ok {
		return 0, proto.InvalidContext
	}
	if !dok {
		return 0, proto.InvalidDevice
	}
	var localID uint64
	err := c.call(proto.TagCreateProgramWithBinary, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dev.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBytes(binary); err != nil {
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
		p := &Program{ID: c.nextLocalID(), RemoteID: remoteID, Context: contextID, Source: string(binary)}
		p.refcount.Store(1)
		c.tableMu.Lock()
		c.programs[p.ID] = p
		c.tableMu.Unlock()
		localID = p.ID
		return nil
	})
	return localID, err
}

// CreateProgramWithBuiltInKernels always fails: no built-in kernel catalog
// exists on the software device (spec §3, §8), matching the server.
func (c *Conn) CreateProgramWithBuiltInKernels() (uint64, error) { return 0, proto.InvalidValue }

func (c *Conn) RetainProgram(id uint64) error {
	c.tableMu.Lock()
	p, ok := c.programs[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidProgram
	}
	return c.call(proto.TagRetainProgram, func(pc *wire.Conn) error {
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
		p.refcount.Add(1)
		return nil
	})
}

func (c *Conn) ReleaseProgram(id uint64) error {
	c.tableMu.Lock()
	p, ok := c.programs[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidProgram
	}
	return c.call(proto.TagReleaseProgram, func(pc *wire.Conn) error {
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
		if p.refcount.Add(-1) <= 0 {
			c.tableMu.Lock()
			delete(c.programs, id)
			c.tableMu.Unlock()
		}
		return nil
	})
}

// BuildProgram always declines a completion callback (spec §4.8: nothing
// can call back into client code over this transport).
func (c *Conn) BuildProgram(id uint64) error {
	c.tableMu.Lock()
	p, ok := c.programs[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidProgram
	}
	return c.call(proto.TagBuildProgram, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(false); err != nil {
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
		p.Built = true
		return nil
	})
}

func (c *Conn) CompileProgram(id uint64) error {
	c.tableMu.Lock()
	p, ok := c.programs[id]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidProgram
	}
	return c.call(proto.TagCompileProgram, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteBool(false); err != nil {
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
		return nil
	})
}

// LinkProgram always resolves to invalid-value regardless of the input
// program list, mirroring the server's own Open Question resolution (spec
// §9): there is no separable link stage over this transport.
func (c *Conn) LinkProgram(contextID uint64, programIDs []uint64) error {
	c.tableMu.Lock()
	ctx, ok := c.contexts[contextID]
	remote := make([]uint64, 0, len(programIDs))
	for _, pid := range programIDs {
		if p, ok := c.programs[pid]; ok {
			remote = append(remote, p.RemoteID)
		}
	}
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidContext
	}
	return c.call(proto.TagLinkProgram, func(pc *wire.Conn) error {
		if err := pc.WriteU64(ctx.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU32(uint32(len(remote))); err != nil {
			return err
		}
		for _, rid := range remote {
			if err := pc.WriteU64(rid); err != nil {
				return err
			}
		}
		if err := pc.WriteBool(false); err != nil {
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
		return nil
	})
}

func (c *Conn) UnloadPlatformCompiler(platformID uint64) error {
	c.tableMu.Lock()
	p, ok := c.platforms[platformID]
	c.tableMu.Unlock()
	if !ok {
		return proto.InvalidPlatform
	}
	return c.call(proto.TagUnloadPlatformCompiler, func(pc *wire.Conn) error {
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
		return nil
	})
}

// ProgramSource answers GetProgramInfo(CL_PROGRAM_SOURCE) from the local
// cache (spec §4.5): the source text never changes after creation.
func (c *Conn) ProgramSource(id uint64) (string, error) {
	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	p, ok := c.programs[id]
	if !ok {
		return "", proto.InvalidProgram
	}
	return p.Source, nil
}

func (c *Conn) getProgramInfo(id uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	p, ok := c.programs[id]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidProgram
	}
	var payload []byte
	err := c.call(proto.TagGetProgramInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
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

// ProgramBinarySizes and ProgramBinaries round-trip rather than answering
// locally: the server keeps the binary, which only CreateProgramWithBinary
// sets (a build does not produce one), and the client does not mirror it
// (spec §4.8 supplemented feature, see SPEC_FULL.md §4.8).
func (c *Conn) ProgramBinarySizes(id uint64) ([]int, error) {
	b, err := c.getProgramInfo(id, proto.ParamProgramBinarySizes)
	if err != nil {
		return nil, err
	}
	return []int{int(le64ToU64(b))}, nil
}

func (c *Conn) ProgramBinaries(id uint64) ([]byte, error) {
	return c.getProgramInfo(id, proto.ParamProgramBinaries)
}

func (c *Conn) getProgramBuildInfo(programID, deviceID uint64, param proto.Param) ([]byte, error) {
	c.tableMu.Lock()
	p, ok := c.programs[programID]
	dev, dok := c.devices[deviceID]
	c.tableMu.Unlock()
	if !ok {
		return nil, proto.InvalidProgram
	}
	if !dok {
		return nil, proto.InvalidDevice
	}
	var payload []byte
	err := c.call(proto.TagGetProgramBuildInfo, func(pc *wire.Conn) error {
		if err := pc.WriteU64(p.RemoteID); err != nil {
			return err
		}
		if err := pc.WriteU64(dev.RemoteID); err != nil {
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

func (c *Conn) ProgramBuildStatus(programID, deviceID uint64) (int32, error) {
	b, err := c.getProgramBuildInfo(programID, deviceID, proto.ParamProgramBuildStatus)
	if err != nil {
		return 0, err
	}
	return int32(le64ToU64(b)), nil
}
