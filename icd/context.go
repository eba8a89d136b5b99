package icd

import "github.com/sanguinariojoe/oclandgo/proto"

// CreateContext mirrors clCreateContext. platform is only meaningful
// when hasPlatform is true, matching the real API's optional
// CL_CONTEXT_PLATFORM property. A completionCallback fails the call with
// out-of-resources, since nothing on this transport can invoke client code
// from the server (spec §4.8).
func (d *ICD) CreateContext(devices []DeviceID, platform PlatformID, hasPlatform bool, completionCallback bool) (Context, Int) {
	if len(devices) == 0 {
		return 0, InvalidValue
	}
	if completionCallback {
		return 0, OutOfResources
	}
	id, err := d.conn.CreateContext(devices, platform, hasPlatform)
	return id, toInt(err)
}

// CreateContextFromType has no device-type enumeration on this transport
// (the software device exposes a fixed, already-discovered topology); a
// caller is expected to call GetDeviceIDs and CreateContext instead, so
// this always answers invalid-value without a round trip.
func (d *ICD) CreateContextFromType(deviceType uint64) (Context, Int) { return 0, InvalidValue }

func (d *ICD) RetainContext(context Context) Int  { return toInt(d.conn.RetainContext(context)) }
func (d *ICD) ReleaseContext(context Context) Int { return toInt(d.conn.ReleaseContext(context)) }

// GetContextInfo only answers CL_CONTEXT_DEVICES, from the local cache
// (spec §4.5); anything else, CL_CONTEXT_REFERENCE_COUNT included, is
// invalid-value.
func (d *ICD) GetContextInfo(context Context, param proto.Param) ([]DeviceID, Int) {
	switch param {
	case proto.ParamContextDevices:
		devs, err := d.conn.ContextDevices(context)
		return devs, toInt(err)
	default:
		return nil, InvalidValue
	}
}
