package icd

import "github.com/sanguinariojoe/oclandgo/proto"

// CreateCommandQueue mirrors clCreateCommandQueue; properties is decoded
// into the two boolean flags this implementation recognises
// (out-of-order execution, profiling) rather than the full
// cl_command_queue_properties bitfield.
func (d *ICD) CreateCommandQueue(context Context, device DeviceID, outOfOrder, profiling bool) (CommandQueue, Int) {
	id, err := d.conn.CreateCommandQueue(context, device, outOfOrder, profiling)
	return id, toInt(err)
}

func (d *ICD) RetainCommandQueue(queue CommandQueue) Int {
	return toInt(d.conn.RetainCommandQueue(queue))
}

func (d *ICD) ReleaseCommandQueue(queue CommandQueue) Int {
	return toInt(d.conn.ReleaseCommandQueue(queue))
}

func (d *ICD) GetCommandQueueInfo(queue CommandQueue, param proto.Param) (uint64, Int) {
	switch param {
	case proto.ParamQueueContext:
		ctx, err := d.conn.QueueContext(queue)
		return ctx, toInt(err)
	case proto.ParamQueueDevice:
		dev, err := d.conn.QueueDevice(queue)
		return dev, toInt(err)
	default:
		return 0, InvalidValue
	}
}

func (d *ICD) Flush(queue CommandQueue) Int  { return toInt(d.conn.Flush(queue)) }
func (d *ICD) Finish(queue CommandQueue) Int { return toInt(d.conn.Finish(queue)) }
