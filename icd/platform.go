package icd

import "github.com/sanguinariojoe/oclandgo/proto"

// GetPlatformIDs mirrors clGetPlatformIDs. numEntries sanity-checks the
// real loader's contract (numEntries == 0 with a non-nil platforms slot
// is invalid-value) but this implementation never truncates the result —
// the server's platform topology is small and static (spec §8 scenario
// 1) — so platforms is always filled in full regardless of numEntries.
func (d *ICD) GetPlatformIDs(numEntries int, wantPlatforms bool) ([]PlatformID, Int) {
	if wantPlatforms && numEntries == 0 {
		return nil, InvalidValue
	}
	ids, err := d.conn.GetPlatformIDs()
	return ids, toInt(err)
}

// IcdGetPlatformIDsKHR is the extension entry point real ICD loaders
// probe for; identical to GetPlatformIDs here since there is exactly one
// loader-visible mechanism on this transport.
func (d *ICD) IcdGetPlatformIDsKHR(numEntries int) ([]PlatformID, Int) {
	return d.GetPlatformIDs(numEntries, true)
}

// GetPlatformInfo mirrors clGetPlatformInfo's CL_PLATFORM_NAME/VENDOR/
// VERSION/PROFILE cases; CL_PLATFORM_EXTENSIONS always answers an empty
// string since this implementation exposes none (DESIGN.md, supplemented
// features).
func (d *ICD) GetPlatformInfo(platform PlatformID, param proto.Param) (string, Int) {
	switch param {
	case proto.ParamName:
		s, err := d.conn.PlatformName(platform)
		return s, toInt(err)
	case proto.ParamVendor:
		s, err := d.conn.PlatformVendor(platform)
		return s, toInt(err)
	case proto.ParamVersion:
		s, err := d.conn.PlatformVersion(platform)
		return s, toInt(err)
	case proto.ParamProfile:
		s, err := d.conn.PlatformProfile(platform)
		return s, toInt(err)
	case proto.ParamExtensions:
		return "", Success
	default:
		return "", InvalidValue
	}
}

func (d *ICD) GetDeviceIDs(platform PlatformID, numEntries int, wantDevices bool) ([]DeviceID, Int) {
	if wantDevices && numEntries == 0 {
		return nil, InvalidValue
	}
	ids, err := d.conn.GetDeviceIDs(platform)
	return ids, toInt(err)
}

// GetDeviceInfo covers the device fields this implementation tracks
// (spec §4.8); unrecognised params answer invalid-value rather than a
// round trip, matching the server's own rejection for unimplemented
// CL_DEVICE_* queries.
func (d *ICD) GetDeviceInfo(device DeviceID, param proto.Param) (uint64, string, Int) {
	switch param {
	case proto.ParamName:
		s, err := d.conn.DeviceName(device)
		return 0, s, toInt(err)
	case proto.ParamMaxWorkGroupSize:
		n, err := d.conn.DeviceMaxWorkGroupSize(device)
		return uint64(n), "", toInt(err)
	default:
		return 0, "", InvalidValue
	}
}

// CreateSubDevices always fails: no partitioning model exists on the
// software device (spec §4.8).
func (d *ICD) CreateSubDevices(device DeviceID) ([]DeviceID, Int) {
	ids, err := d.conn.CreateSubDevices(device)
	return ids, toInt(err)
}

func (d *ICD) RetainDevice(device DeviceID) Int  { return toInt(d.conn.RetainDevice(device)) }
func (d *ICD) ReleaseDevice(device DeviceID) Int { return toInt(d.conn.ReleaseDevice(device)) }

// UnloadCompiler takes no handle at all in the real API (deprecated,
// global, cl_int clUnloadCompiler(void)); there is nothing to transmit,
// so it answers success without ever touching the connection (spec §4.8
// supplemented feature, DESIGN.md).
func (d *ICD) UnloadCompiler() Int { return Success }

func (d *ICD) UnloadPlatformCompiler(platform PlatformID) Int {
	return toInt(d.conn.UnloadPlatformCompiler(platform))
}

// GetExtensionFunctionAddress and its per-platform variant always answer
// a nil pointer: ocland exposes no extensions (spec §4.8 supplemented
// feature, DESIGN.md), so both are mechanical stubs with no connection
// round trip at all.
func (d *ICD) GetExtensionFunctionAddress(name string) uintptr { return 0 }

func (d *ICD) GetExtensionFunctionAddressForPlatform(platform PlatformID, name string) uintptr {
	return 0
}
