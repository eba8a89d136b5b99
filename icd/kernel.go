package icd

import "github.com/sanguinariojoe/oclandgo/proto"

func (d *ICD) CreateKernel(program Program, name string) (Kernel, Int) {
	if name == "" {
		return 0, InvalidValue
	}
	id, err := d.conn.CreateKernel(program, name)
	if err != nil {
		return 0, InvalidKernelName
	}
	return id, Success
}

func (d *ICD) CreateKernelsInProgram(program Program) ([]Kernel, Int) {
	ids, err := d.conn.CreateKernelsInProgram(program)
	return ids, toInt(err)
}

func (d *ICD) RetainKernel(kernel Kernel) Int  { return toInt(d.conn.RetainKernel(kernel)) }
func (d *ICD) ReleaseKernel(kernel Kernel) Int { return toInt(d.conn.ReleaseKernel(kernel)) }

// SetKernelArg mirrors clSetKernelArg's overloaded shape: isMem selects
// the memory-argument path with mem as the buffer; otherwise value is a
// plain-value argument forwarded as opaque bytes.
func (d *ICD) SetKernelArg(kernel Kernel, index int, isMem bool, mem Mem, value []byte) Int {
	if index < 0 {
		return InvalidArgIndex
	}
	if isMem {
		return toInt(d.conn.SetKernelArgMem(kernel, index, mem))
	}
	return toInt(d.conn.SetKernelArgValue(kernel, index, value))
}

func (d *ICD) GetKernelInfo(kernel Kernel, param proto.Param) (string, int, Int) {
	switch param {
	case proto.ParamKernelFunctionName:
		s, err := d.conn.KernelFunctionName(kernel)
		return s, 0, toInt(err)
	case proto.ParamKernelNumArgs:
		n, err := d.conn.KernelNumArgs(kernel)
		return "", n, toInt(err)
	default:
		return "", 0, InvalidValue
	}
}

func (d *ICD) GetKernelArgInfo(kernel Kernel, index int, param proto.Param) (uint64, Int) {
	switch param {
	case proto.ParamKernelArgAddressQualifier:
		q, err := d.conn.KernelArgAddressQualifier(kernel, index)
		return q, toInt(err)
	default:
		return 0, InvalidValue
	}
}

func (d *ICD) GetKernelWorkGroupInfo(kernel Kernel, device DeviceID, param proto.Param) (uint64, Int) {
	switch param {
	case proto.ParamMaxWorkGroupSize:
		n, err := d.conn.KernelWorkGroupMaxSize(kernel, device)
		return uint64(n), toInt(err)
	default:
		return 0, InvalidValue
	}
}
