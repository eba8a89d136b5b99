// Command oclandicd is the c-shared skeleton a real ICD loader would
// dlopen: one //export stub per entry point, each doing nothing but
// handle-table bookkeeping and a delegation into the icd package.
// Building this requires `go build -buildmode=c-shared`, which in turn
// requires a real OpenCL header/loader to link a test consumer against;
// neither is available in this environment, so this file is exercised
// only by direct Go calls, not by cgo (DESIGN.md, "Open Question: ICD
// ABI").
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package main

import "C"

import (
	"net"
	"os"
	"strconv"
	"sync"
	"unsafe"

	"github.com/sanguinariojoe/oclandgo/client"
	"github.com/sanguinariojoe/oclandgo/icd"
)

// veil holds the one client connection this process keeps open to the
// remote daemon, lazily dialled on first use. A real loader configures
// the server address via an environment variable or an icd vendor file;
// here it is read from OCLAND_SERVER, following the same idiom.
var (
	mu   sync.Mutex
	veil *icd.ICD
)

func driver() *icd.ICD {
	mu.Lock()
	defer mu.Unlock()
	if veil != nil {
		return veil
	}
	addr := os.Getenv("OCLAND_SERVER")
	if addr == "" {
		addr = "127.0.0.1:51000"
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	c, err := client.Dial(host, port)
	if err != nil {
		return nil
	}
	veil = icd.New(c)
	return veil
}

//export clGetPlatformIDs
func clGetPlatformIDs(numEntries C.uint, wantPlatforms C.int, platformsOut *C.ulonglong, numPlatformsOut *C.uint) C.int {
	d := driver()
	if d == nil {
		return C.int(icd.OutOfResources)
	}
	ids, status := d.GetPlatformIDs(int(numEntries), wantPlatforms != 0)
	if status != icd.Success {
		return C.int(status)
	}
	writeHandles(platformsOut, ids)
	if numPlatformsOut != nil {
		*numPlatformsOut = C.uint(len(ids))
	}
	return C.int(icd.Success)
}

//export clGetDeviceIDs
func clGetDeviceIDs(platform C.ulonglong, deviceType C.ulonglong, numEntries C.uint, devicesOut *C.ulonglong, numDevicesOut *C.uint) C.int {
	d := driver()
	if d == nil {
		return C.int(icd.OutOfResources)
	}
	ids, status := d.GetDeviceIDs(icd.PlatformID(platform), int(numEntries), devicesOut != nil)
	if status != icd.Success {
		return C.int(status)
	}
	writeHandles(devicesOut, ids)
	if numDevicesOut != nil {
		*numDevicesOut = C.uint(len(ids))
	}
	return C.int(icd.Success)
}

//export clRetainDevice
func clRetainDevice(device C.ulonglong) C.int {
	d := driver()
	if d == nil {
		return C.int(icd.OutOfResources)
	}
	return C.int(d.RetainDevice(icd.DeviceID(device)))
}

//export clReleaseDevice
func clReleaseDevice(device C.ulonglong) C.int {
	d := driver()
	if d == nil {
		return C.int(icd.OutOfResources)
	}
	return C.int(d.ReleaseDevice(icd.DeviceID(device)))
}

// writeHandles copies a Go uint64 slice into the caller-owned C array, the
// same ABI shape every clGet*IDs entry point shares.
func writeHandles(out *C.ulonglong, ids []uint64) {
	if out == nil || len(ids) == 0 {
		return
	}
	dst := unsafe.Slice((*uint64)(unsafe.Pointer(out)), len(ids))
	copy(dst, ids)
}

func main() {}
