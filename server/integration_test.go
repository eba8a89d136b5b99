package server_test

import (
	"net"
	"testing"

	"github.com/sanguinariojoe/oclandgo/client"
	"github.com/sanguinariojoe/oclandgo/runtime/cpudevice"
	"github.com/sanguinariojoe/oclandgo/server"
)

// startDaemon spins up one accept loop exactly like cmd/oclandd's: pair
// each accepted connection with the next accepted connection as its
// callbacks stream, then serve. Returns the port to dial.
func startDaemon(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	port := ln.Addr().(*net.TCPAddr).Port
	cfg := server.DefaultConfig()
	cfg.PrimaryPort = port
	dev := cpudevice.New()

	go func() {
		for {
			primary, err := ln.Accept()
			if err != nil {
				return
			}
			cb, err := ln.Accept()
			if err != nil {
				return
			}
			s := server.NewSession(primary, dev, cfg)
			s.AttachCallbacks(cb)
			go s.Serve()
		}
	}()
	return port
}

func TestPlatformAndDeviceDiscovery(t *testing.T) {
	port := startDaemon(t)
	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	if err != nil {
		t.Fatalf("GetPlatformIDs: %v", err)
	}
	if len(platforms) == 0 {
		t.Fatal("expected at least one platform")
	}

	devices, err := c.GetDeviceIDs(platforms[0])
	if err != nil {
		t.Fatalf("GetDeviceIDs: %v", err)
	}
	if len(devices) == 0 {
		t.Fatal("expected at least one device")
	}

	name, err := c.PlatformName(platforms[0])
	if err != nil || name == "" {
		t.Fatalf("PlatformName: %q, %v", name, err)
	}
}

func TestBufferWriteReadRoundTrip(t *testing.T) {
	port := startDaemon(t)
	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0])
	ctx, err := c.CreateContext(devices, platforms[0], true)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	queue, err := c.CreateCommandQueue(ctx, devices[0], false, false)
	if err != nil {
		t.Fatalf("CreateCommandQueue: %v", err)
	}

	seed := make([]byte, 4096)
	for i := range seed {
		seed[i] = byte(i & 0xFF)
	}
	mem, err := c.CreateBuffer(ctx, client.MemReadWrite|client.MemCopyHostPtr, len(seed), seed)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	got := make([]byte, len(seed))
	if _, err := c.EnqueueReadBuffer(queue, mem, true, 0, got, false, nil); err != nil {
		t.Fatalf("EnqueueReadBuffer: %v", err)
	}
	for i := range got {
		if got[i] != seed[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], seed[i])
		}
	}
}

func TestUserEventGatesSubmission(t *testing.T) {
	port := startDaemon(t)
	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0])
	ctx, _ := c.CreateContext(devices, platforms[0], true)
	queue, _ := c.CreateCommandQueue(ctx, devices[0], false, false)

	prog, err := c.CreateProgramWithSource(ctx, "kernel noop(i0,N) { }")
	if err != nil {
		t.Fatalf("CreateProgramWithSource: %v", err)
	}
	if err := c.BuildProgram(prog); err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	kernel, err := c.CreateKernel(prog, "noop")
	if err != nil {
		t.Fatalf("CreateKernel: %v", err)
	}
	for i := 0; i < 2; i++ { // i0 and N: every argument must be set before an enqueue
		if err := c.SetKernelArgValue(kernel, i, make([]byte, 4)); err != nil {
			t.Fatalf("SetKernelArgValue(%d): %v", i, err)
		}
	}

	gate, err := c.CreateUserEvent(ctx)
	if err != nil {
		t.Fatalf("CreateUserEvent: %v", err)
	}
	ev, err := c.EnqueueNDRangeKernel(queue, kernel, []int{1}, true, []uint64{gate})
	if err != nil {
		t.Fatalf("EnqueueNDRangeKernel: %v", err)
	}

	status, err := c.EventCommandExecutionStatus(ev)
	if err != nil {
		t.Fatalf("EventCommandExecutionStatus: %v", err)
	}
	const clSubmitted = int32(2)
	if status != clSubmitted {
		t.Fatalf("status before gate release = %d, want submitted (%d)", status, clSubmitted)
	}

	if err := c.SetUserEventStatus(gate, 0); err != nil {
		t.Fatalf("SetUserEventStatus: %v", err)
	}
	if err := c.WaitForEvents([]uint64{ev}); err != nil {
		t.Fatalf("WaitForEvents: %v", err)
	}

	status, err = c.EventCommandExecutionStatus(ev)
	if err != nil {
		t.Fatalf("EventCommandExecutionStatus (after): %v", err)
	}
	const clComplete = int32(0)
	if status != clComplete {
		t.Fatalf("status after gate release = %d, want complete (%d)", status, clComplete)
	}
}

func TestMapWriteUnmapWritesBack(t *testing.T) {
	port := startDaemon(t)
	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, _ := c.GetDeviceIDs(platforms[0])
	ctx, _ := c.CreateContext(devices, platforms[0], true)
	queue, _ := c.CreateCommandQueue(ctx, devices[0], false, false)

	mem, err := c.CreateBuffer(ctx, client.MemReadWrite, 64, nil)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	mapID, host, _, err := c.EnqueueMapBuffer(queue, mem, true, client.MapWrite, 0, 64, false, nil)
	if err != nil {
		t.Fatalf("EnqueueMapBuffer: %v", err)
	}
	for i := range host {
		host[i] = byte(i)
	}
	if _, err := c.EnqueueUnmapMemObject(queue, mapID, false, nil); err != nil {
		t.Fatalf("EnqueueUnmapMemObject: %v", err)
	}

	got := make([]byte, 64)
	if _, err := c.EnqueueReadBuffer(queue, mem, true, 0, got, false, nil); err != nil {
		t.Fatalf("EnqueueReadBuffer: %v", err)
	}
	for i := range got {
		if got[i] != byte(i) {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], byte(i))
		}
	}
}

func TestDeviceRetainReleaseRoundTrip(t *testing.T) {
	port := startDaemon(t)
	c, err := client.Dial("127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	platforms, _ := c.GetPlatformIDs()
	devices, err := c.GetDeviceIDs(platforms[0])
	if err != nil {
		t.Fatalf("GetDeviceIDs: %v", err)
	}
	dev := devices[0]

	if err := c.RetainDevice(dev); err != nil {
		t.Fatalf("RetainDevice: %v", err)
	}
	if err := c.ReleaseDevice(dev); err != nil {
		t.Fatalf("ReleaseDevice (1st): %v", err)
	}
	// The retain/release pair above leaves the initial refcount of 1; this
	// release drops it to zero, removing the client-side descriptor and the
	// server handle, and still succeeds.
	if err := c.ReleaseDevice(dev); err != nil {
		t.Fatalf("ReleaseDevice (2nd): %v", err)
	}
}
