package icd

import "github.com/sanguinariojoe/oclandgo/proto"

func (d *ICD) WaitForEvents(events []Event) Int {
	if len(events) == 0 {
		return InvalidValue
	}
	return toInt(d.conn.WaitForEvents(events))
}

func (d *ICD) GetEventInfo(event Event, param proto.Param) (uint64, Int) {
	switch param {
	case proto.ParamEventCommandType:
		t, err := d.conn.EventCommandType(event)
		return uint64(t), toInt(err)
	case proto.ParamEventCommandExecutionStatus:
		s, err := d.conn.EventCommandExecutionStatus(event)
		return uint64(uint32(s)), toInt(err)
	case proto.ParamEventContext:
		c, err := d.conn.EventContext(event)
		return c, toInt(err)
	case proto.ParamEventCommandQueue:
		q, err := d.conn.EventCommandQueue(event)
		return q, toInt(err)
	default:
		return 0, InvalidValue
	}
}

func (d *ICD) RetainEvent(event Event) Int  { return toInt(d.conn.RetainEvent(event)) }
func (d *ICD) ReleaseEvent(event Event) Int { return toInt(d.conn.ReleaseEvent(event)) }

func (d *ICD) CreateUserEvent(context Context) (Event, Int) {
	id, err := d.conn.CreateUserEvent(context)
	return id, toInt(err)
}

func (d *ICD) SetUserEventStatus(event Event, execStatus int32) Int {
	if execStatus != 0 && execStatus >= 0 {
		return InvalidValue // only CL_COMPLETE (0) or a negative error code is legal
	}
	return toInt(d.conn.SetUserEventStatus(event, execStatus))
}

// SetEventCallback always fails: nothing on this transport can invoke
// client code from the server (spec §4.8).
func (d *ICD) SetEventCallback(event Event) Int { return toInt(d.conn.SetEventCallback(event)) }

func (d *ICD) GetEventProfilingInfo(event Event, param proto.Param) (int64, Int) {
	v, err := d.conn.GetEventProfilingInfo(event, param)
	return v, toInt(err)
}
