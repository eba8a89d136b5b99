package icd

import "github.com/sanguinariojoe/oclandgo/proto"

func (d *ICD) CreateProgramWithSource(context Context, source string) (Program, Int) {
	if source == "" {
		return 0, InvalidValue
	}
	id, err := d.conn.CreateProgramWithSource(context, source)
	return id, toInt(err)
}

func (d *ICD) CreateProgramWithBinary(context Context, device DeviceID, binary []byte) (Program, Int) {
	if len(binary) == 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.CreateProgramWithBinary(context, device, binary)
	if err != nil {
		return 0, InvalidBinary
	}
	return id, Success
}

func (d *ICD) CreateProgramWithBuiltInKernels() (Program, Int) {
	id, err := d.conn.CreateProgramWithBuiltInKernels()
	return id, toInt(err)
}

func (d *ICD) RetainProgram(program Program) Int  { return toInt(d.conn.RetainProgram(program)) }
func (d *ICD) ReleaseProgram(program Program) Int { return toInt(d.conn.ReleaseProgram(program)) }

func (d *ICD) BuildProgram(program Program) Int { return toInt(d.conn.BuildProgram(program)) }
func (d *ICD) CompileProgram(program Program) Int {
	return toInt(d.conn.CompileProgram(program))
}

// LinkProgram always resolves to invalid-value (spec §9, already-resolved
// Open Question: no separable link stage exists over this transport).
func (d *ICD) LinkProgram(context Context, programs []Program) (Program, Int) {
	return 0, toInt(d.conn.LinkProgram(context, programs))
}

func (d *ICD) UnloadPlatformCompiler(platform PlatformID) Int {
	return toInt(d.conn.UnloadPlatformCompiler(platform))
}

func (d *ICD) GetProgramInfo(program Program, param proto.Param) ([]byte, Int) {
	switch param {
	case proto.ParamProgramSource:
		s, err := d.conn.ProgramSource(program)
		return []byte(s), toInt(err)
	case proto.ParamProgramBinarySizes:
		sizes, err := d.conn.ProgramBinarySizes(program)
		if err != nil {
			return nil, toInt(err)
		}
		out := make([]byte, 0, 8*len(sizes))
		for _, s := range sizes {
			out = append(out, byte(s), byte(s>>8), byte(s>>16), byte(s>>24), byte(s>>32), byte(s>>40), byte(s>>48), byte(s>>56))
		}
		return out, Success
	case proto.ParamProgramBinaries:
		b, err := d.conn.ProgramBinaries(program)
		return b, toInt(err)
	default:
		return nil, InvalidValue
	}
}

func (d *ICD) GetProgramBuildInfo(program Program, device DeviceID) (int32, Int) {
	st, err := d.conn.ProgramBuildStatus(program, device)
	return st, toInt(err)
}
