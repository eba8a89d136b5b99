package icd

import "github.com/sanguinariojoe/oclandgo/bulk"

// EnqueueReadBuffer mirrors clEnqueueReadBuffer. dst is sized to the
// transfer length, mirroring the real API's separate offset/cb pair.
func (d *ICD) EnqueueReadBuffer(queue CommandQueue, mem Mem, blocking bool, offset int, dst []byte, wantEvent bool, waitList []Event) (Event, Int) {
	if len(dst) == 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.EnqueueReadBuffer(queue, mem, blocking, offset, dst, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueWriteBuffer(queue CommandQueue, mem Mem, blocking bool, offset int, src []byte, wantEvent bool, waitList []Event) (Event, Int) {
	if len(src) == 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.EnqueueWriteBuffer(queue, mem, blocking, offset, src, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueReadBufferRect(queue CommandQueue, mem Mem, bufOrigin, bufRowPitch, bufSlicePitch int, host []byte, region bulk.Region, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueReadBufferRect(queue, mem, bufOrigin, bufRowPitch, bufSlicePitch, host, region, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueWriteBufferRect(queue CommandQueue, mem Mem, bufOrigin, bufRowPitch, bufSlicePitch int, host []byte, region bulk.Region, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueWriteBufferRect(queue, mem, bufOrigin, bufRowPitch, bufSlicePitch, host, region, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueCopyBuffer(queue CommandQueue, src, dst Mem, srcOff, dstOff, size int, wantEvent bool, waitList []Event) (Event, Int) {
	if size <= 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.EnqueueCopyBuffer(queue, src, dst, srcOff, dstOff, size, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueCopyBufferRect(queue CommandQueue, src, dst Mem, srcOrigin, srcRowPitch, srcSlicePitch int, dstOrigin, dstRowPitch, dstSlicePitch int, region bulk.Region, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueCopyBufferRect(queue, src, dst, srcOrigin, srcRowPitch, srcSlicePitch, dstOrigin, dstRowPitch, dstSlicePitch, region, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueFillBuffer(queue CommandQueue, mem Mem, pattern []byte, offset, size int, wantEvent bool, waitList []Event) (Event, Int) {
	if len(pattern) == 0 || size <= 0 {
		return 0, InvalidValue
	}
	id, err := d.conn.EnqueueFillBuffer(queue, mem, pattern, offset, size, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueMigrateMemObjects(queue CommandQueue, mems []Mem, flags Bitfield, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueMigrateMemObjects(queue, mems, flags, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueNDRangeKernel(queue CommandQueue, kernel Kernel, globalWorkSize []int, wantEvent bool, waitList []Event) (Event, Int) {
	if len(globalWorkSize) == 0 || len(globalWorkSize) > 3 {
		return 0, InvalidValue
	}
	id, err := d.conn.EnqueueNDRangeKernel(queue, kernel, globalWorkSize, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueTask(queue CommandQueue, kernel Kernel, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueTask(queue, kernel, wantEvent, waitList)
	return id, toInt(err)
}

// EnqueueNativeKernel always fails: there is no way to marshal a client
// function pointer across this transport (spec §1 scope).
func (d *ICD) EnqueueNativeKernel() Int { return toInt(d.conn.EnqueueNativeKernel()) }

func (d *ICD) EnqueueMarkerWithWaitList(queue CommandQueue, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueMarkerWithWaitList(queue, wantEvent, waitList)
	return id, toInt(err)
}

func (d *ICD) EnqueueBarrierWithWaitList(queue CommandQueue, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueBarrierWithWaitList(queue, wantEvent, waitList)
	return id, toInt(err)
}

// EnqueueMarker, EnqueueWaitForEvents and EnqueueBarrier are the
// deprecated 1.0-era entry points, kept for source compatibility with
// pre-1.2 client code (spec §9 original_source notes).
func (d *ICD) EnqueueMarker(queue CommandQueue) (Event, Int) {
	id, err := d.conn.EnqueueMarker(queue)
	return id, toInt(err)
}

func (d *ICD) EnqueueWaitForEvents(queue CommandQueue, waitList []Event) Int {
	return toInt(d.conn.EnqueueWaitForEvents(queue, waitList))
}

func (d *ICD) EnqueueBarrier(queue CommandQueue) Int {
	return toInt(d.conn.EnqueueBarrier(queue))
}

// EnqueueMapBuffer and EnqueueUnmapMemObject are synthesised entirely on
// the client (spec §4.8); the veneer only applies the flags/size sanity
// check before delegating.
func (d *ICD) EnqueueMapBuffer(queue CommandQueue, mem Mem, blocking bool, flags Bitfield, offset, size int, wantEvent bool, waitList []Event) (mappedPtr MappedPtr, host []byte, event Event, status Int) {
	if size <= 0 {
		return 0, nil, 0, InvalidValue
	}
	mappedPtr, host, event, err := d.conn.EnqueueMapBuffer(queue, mem, blocking, flags, offset, size, wantEvent, waitList)
	return mappedPtr, host, event, toInt(err)
}

func (d *ICD) EnqueueUnmapMemObject(queue CommandQueue, mappedPtr MappedPtr, wantEvent bool, waitList []Event) (Event, Int) {
	id, err := d.conn.EnqueueUnmapMemObject(queue, mappedPtr, wantEvent, waitList)
	return id, toInt(err)
}
