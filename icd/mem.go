package icd

import "github.com/sanguinariojoe/oclandgo/proto"

// CreateBuffer mirrors clCreateBuffer. The real API requires CL_MEM_COPY_HOST_PTR
// or CL_MEM_USE_HOST_PTR to carry a non-nil host_ptr; that sanity check
// belongs here, before the handle ever reaches the connection.
func (d *ICD) CreateBuffer(context Context, flags Bitfield, size int, hostData []byte) (Mem, Int) {
	if size <= 0 {
		return 0, InvalidValue
	}
	if flags&(MemUseHostPtr|MemCopyHostPtr) != 0 && hostData == nil {
		return 0, InvalidHostPtr
	}
	id, err := d.conn.CreateBuffer(context, flags, size, hostData)
	return id, toInt(err)
}

func (d *ICD) CreateSubBuffer(parent Mem, flags Bitfield, origin, size int) (Mem, Int) {
	if size <= 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.CreateSubBuffer(parent, flags, origin, size)
	return id, toInt(err)
}

func (d *ICD) RetainMemObject(mem Mem) Int  { return toInt(d.conn.RetainMemObject(mem)) }
func (d *ICD) ReleaseMemObject(mem Mem) Int { return toInt(d.conn.ReleaseMemObject(mem)) }

func (d *ICD) GetMemObjectInfo(mem Mem, param proto.Param) (uint64, Int) {
	switch param {
	case proto.ParamMemSize:
		n, err := d.conn.MemSize(mem)
		return uint64(n), toInt(err)
	case proto.ParamMemFlags:
		f, err := d.conn.MemFlags(mem)
		return f, toInt(err)
	default:
		return 0, InvalidValue
	}
}

// CreateImage, CreateImage2D and CreateImage3D all reject: no image
// execution model exists on the software device (spec §3, §8).
func (d *ICD) CreateImage() (Mem, Int) {
	id, err := d.conn.CreateImage()
	return id, toInt(err)
}

func (d *ICD) CreateImage2D() (Mem, Int) { return d.CreateImage() }
func (d *ICD) CreateImage3D() (Mem, Int) { return d.CreateImage() }

func (d *ICD) GetSupportedImageFormats(context Context) ([]uint64, Int) {
	formats, err := d.conn.GetSupportedImageFormats(context)
	return formats, toInt(err)
}
