package server

import (
	"context"

	"github.com/sanguinariojoe/oclandgo/proto"
	"github.com/sanguinariojoe/oclandgo/runtime"
)

// Memory flag bits, mirroring the compute API's cl_mem_flags bitmask
// (spec §3 "Memory objects"). Only the bits this implementation actually
// discriminates on are named.
const (
	MemReadWrite   uint64 = 1 << 0
	MemWriteOnly   uint64 = 1 << 1
	MemReadOnly    uint64 = 1 << 2
	MemUseHostPtr  uint64 = 1 << 3
	MemAllocHostPtr uint64 = 1 << 4
	MemCopyHostPtr uint64 = 1 << 5
)

func init() {
	register(proto.TagCreateBuffer, hCreateBuffer)
	register(proto.TagCreateSubBuffer, hCreateSubBuffer)
	register(proto.TagCreateImage, hCreateImage)
	register(proto.TagCreateImage2D, hCreateImage)
	register(proto.TagCreateImage3D, hCreateImage)
	register(proto.TagRetainMemObject, hRetainMemObject)
	register(proto.TagReleaseMemObject, hReleaseMemObject)
	register(proto.TagGetMemObjectInfo, hGetMemObjectInfo)
	register(proto.TagGetImageInfo, hGetImageInfo)
	register(proto.TagGetSupportedImageFormats, hGetSupportedImageFormats)
	register(proto.TagSetMemObjectDestructorCallback, hSetMemObjectDestructorCallback)
}

// hCreateBuffer implements clCreateBuffer (spec §3, §4.8). USE_HOST_PTR and
// ALLOC_HOST_PTR have no meaning once the buffer lives on a remote peer —
// there is no shared address space to pin — so both are rejected with
// invalid-value; only COPY_HOST_PTR (an explicit upload at creation time)
// is honored.
func hCreateBuffer(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	flags, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	size, err := s.conn.ReadSize()
	if err != nil {
		return err
	}
	hasHostData, err := s.conn.ReadBool()
	if err != nil {
		return err
	}
	var hostData []byte
	if hasHostData {
		// COPY_HOST_PTR is implemented by compressing the host region into
		// the creation frame itself (spec §4.8).
		if hostData, err = s.conn.ReadDataPack(int(size)); err != nil {
			return err
		}
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	if flags&(MemUseHostPtr|MemAllocHostPtr) != 0 {
		return replyStatus(s.conn, proto.InvalidValue)
	}
	obj, err := s.dev.AllocBuffer(int(size))
	if err != nil {
		return replyStatus(s.conn, proto.OutOfResources)
	}
	if hasHostData {
		if err := s.dev.EnqueueWrite(context.Background(), obj, 0, hostData); err != nil {
			s.dev.FreeBuffer(obj)
			return replyStatus(s.conn, proto.OutOfResources)
		}
	}
	m := &Mem{Context: ctxID, Size: int(size), Flags: flags, ElemSize: 1, Obj: obj}
	m.id = s.reg.NextID()
	m.rc.Store(1)
	s.reg.Register(proto.KindMem, m)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(m.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

// hCreateSubBuffer implements clCreateSubBuffer's region variant: a view
// over an existing buffer sharing its backing store (spec §3: sub-buffers
// share storage with their parent, do not separately retain a host-side
// mirror). A host-ptr-derived parent has no meaning here either.
func hCreateSubBuffer(s *Session) error {
	parentID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	flags, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	origin, err := s.conn.ReadSize()
	if err != nil {
		return err
	}
	size, err := s.conn.ReadSize()
	if err != nil {
		return err
	}
	parent, found, rerr := lookupTyped[*Mem](s, proto.KindMem, parentID)
	if !found {
		return rerr
	}
	if flags&(MemUseHostPtr|MemAllocHostPtr|MemCopyHostPtr) != 0 {
		return replyStatus(s.conn, proto.InvalidValue)
	}
	if int(origin+size) > parent.Size {
		return replyStatus(s.conn, proto.InvalidValue)
	}
	// A sub-buffer shares storage with its parent (spec §3): slicing the
	// parent's backing bytes directly, rather than copying, gives that
	// aliasing for free.
	sub := &Mem{
		Context:  parent.Context,
		Size:     int(size),
		Flags:    flags,
		ElemSize: 1,
		Parent:   parent.id,
		Obj:      &runtime.MemObject{Bytes: parent.Obj.Bytes[origin : origin+size]},
	}
	sub.id = s.reg.NextID()
	sub.rc.Store(1)
	s.reg.Register(proto.KindMem, sub)

	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	if err := s.conn.WriteU64(sub.id); err != nil {
		return err
	}
	return s.conn.Flush()
}

// hCreateImage rejects image creation outright: the software device has no
// image/sampler execution model, so every image-shaped entry point (the
// current descriptor form and both deprecated 2D/3D forms) fails
// invalid-value rather than silently pretending to succeed.
func hCreateImage(s *Session) error {
	return replyStatus(s.conn, proto.InvalidValue)
}

func hRetainMemObject(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, ok := s.reg.Retain(proto.KindMem, id); !ok {
		return replyStatus(s.conn, proto.InvalidMemObject)
	}
	return replyStatus(s.conn, proto.Success)
}

func hReleaseMemObject(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	m, found := s.reg.Lookup(proto.KindMem, id)
	if !found {
		return replyStatus(s.conn, proto.InvalidMemObject)
	}
	_, releasedToZero, ok := s.reg.Release(proto.KindMem, id)
	if !ok {
		return replyStatus(s.conn, proto.InvalidMemObject)
	}
	if releasedToZero {
		mem := m.(*Mem)
		if mem.Parent == 0 {
			s.dev.FreeBuffer(mem.Obj)
		}
	}
	return replyStatus(s.conn, proto.Success)
}

func hGetMemObjectInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	param, err := s.conn.ReadU32()
	if err != nil {
		return err
	}
	m, found, rerr := lookupTyped[*Mem](s, proto.KindMem, id)
	if !found {
		return rerr
	}
	var payload []byte
	switch proto.Param(param) {
	case proto.ParamMemSize:
		payload = le64(uint64(m.Size))
	case proto.ParamMemFlags:
		payload = le64(m.Flags)
	default:
		return replyStatus(s.conn, proto.InvalidValue)
	}
	return replyInfo(s, proto.Success, payload)
}

func hGetImageInfo(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, err := s.conn.ReadU32(); err != nil {
		return err
	}
	if !s.reg.Has(proto.KindMem, id) {
		return replyStatus(s.conn, proto.InvalidMemObject)
	}
	return replyStatus(s.conn, proto.InvalidValue)
}

func hGetSupportedImageFormats(s *Session) error {
	ctxID, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if _, found, rerr := lookupTyped[*Context](s, proto.KindContext, ctxID); !found {
		return rerr
	}
	if err := s.conn.WriteI32(int32(proto.Success)); err != nil {
		return err
	}
	return writeU64List(s, nil) // no image formats supported
}

func hSetMemObjectDestructorCallback(s *Session) error {
	id, err := s.conn.ReadU64()
	if err != nil {
		return err
	}
	if !s.reg.Has(proto.KindMem, id) {
		return replyStatus(s.conn, proto.InvalidMemObject)
	}
	return replyStatus(s.conn, proto.InvalidMemObject)
}
