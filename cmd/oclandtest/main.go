// Command oclandtest is a sanity client: it dials a running oclandd and
// drives it through the concrete scenarios spec.md enumerates (buffer
// round-trip, kernel execution, non-blocking read survives an early
// event release, user-event-gated submission), printing PASS/FAIL per
// scenario rather than asserting with a test framework, since this is
// meant to be run by hand against a live daemon.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/sanguinariojoe/oclandgo/client"
)

func main() {
	addr := flag.String("addr", "127.0.0.1", "oclandd host")
	port := flag.Int("port", 51000, "oclandd primary port")
	flag.Parse()

	c, err := client.Dial(*addr, *port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s:%d: %v\n", *addr, *port, err)
		os.Exit(1)
	}
	defer c.Close()

	platforms, err := c.GetPlatformIDs()
	check("platform discovery", err)
	if len(platforms) == 0 {
		fail("platform discovery", fmt.Errorf("no platforms reported"))
	}
	devices, err := c.GetDeviceIDs(platforms[0])
	check("device discovery", err)
	if len(devices) == 0 {
		fail("device discovery", fmt.Errorf("no devices reported"))
	}

	ctx, err := c.CreateContext(devices, platforms[0], true)
	check("create context", err)
	queue, err := c.CreateCommandQueue(ctx, devices[0], false, false)
	check("create queue", err)

	runBufferRoundTrip(c, ctx, queue)
	runKernelExecution(c, ctx, queue)
	runEarlyEventRelease(c, ctx, queue)
	runUserEventGate(c, ctx, queue)

	fmt.Println("all scenarios passed")
}

// runBufferRoundTrip is scenario 2: a 1 MiB COPY_HOST_PTR buffer seeded
// with i -> i&0xFF must read back byte-identical.
func runBufferRoundTrip(c *client.Conn, ctx, queue uint64) {
	const size = 1 << 20
	seed := make([]byte, size)
	for i := range seed {
		seed[i] = byte(i & 0xFF)
	}
	mem, err := c.CreateBuffer(ctx, client.MemReadWrite|client.MemCopyHostPtr, size, seed)
	check("buffer round trip: create", err)

	got := make([]byte, size)
	_, err = c.EnqueueReadBuffer(queue, mem, true, 0, got, false, nil)
	check("buffer round trip: read", err)

	for i := range got {
		if got[i] != seed[i] {
			fail("buffer round trip", fmt.Errorf("byte %d: got %d want %d", i, got[i], seed[i]))
		}
	}
	fmt.Println("PASS buffer round trip")
}

// runKernelExecution is scenario 3: z[i] = x[i]*y[i] over N=1e6 elements,
// checked within relative error 1e-6.
func runKernelExecution(c *client.Conn, ctx, queue uint64) {
	const n = 1_000_000
	x := randomFloats(n, 1)
	y := randomFloats(n, 2)
	z := make([]byte, 4*n)

	memX, err := c.CreateBuffer(ctx, client.MemReadOnly|client.MemCopyHostPtr, 4*n, floatsToBytes(x))
	check("kernel exec: create x", err)
	memY, err := c.CreateBuffer(ctx, client.MemReadOnly|client.MemCopyHostPtr, 4*n, floatsToBytes(y))
	check("kernel exec: create y", err)
	memZ, err := c.CreateBuffer(ctx, client.MemWriteOnly, 4*n, nil)
	check("kernel exec: create z", err)

	prog, err := c.CreateProgramWithSource(ctx, "kernel test(x,y,z,i0,N) { z[i]=x[i]*y[i]; }")
	check("kernel exec: create program", err)
	check("kernel exec: build program", c.BuildProgram(prog))

	kernel, err := c.CreateKernel(prog, "test")
	check("kernel exec: create kernel", err)
	check("kernel exec: set arg x", c.SetKernelArgMem(kernel, 0, memX))
	check("kernel exec: set arg y", c.SetKernelArgMem(kernel, 1, memY))
	check("kernel exec: set arg z", c.SetKernelArgMem(kernel, 2, memZ))
	check("kernel exec: set arg i0", c.SetKernelArgValue(kernel, 3, make([]byte, 4)))
	check("kernel exec: set arg N", c.SetKernelArgValue(kernel, 4, []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}))

	_, err = c.EnqueueNDRangeKernel(queue, kernel, []int{n}, false, nil)
	check("kernel exec: enqueue", err)

	_, err = c.EnqueueReadBuffer(queue, memZ, true, 0, z, false, nil)
	check("kernel exec: read z", err)

	got := bytesToFloats(z)
	for i := range got {
		want := x[i] * y[i]
		if want == 0 {
			continue
		}
		if rel := math.Abs(float64(got[i]-want)) / math.Abs(float64(want)); rel >= 1e-6 {
			fail("kernel exec", fmt.Errorf("index %d: got %g want %g (rel %g)", i, got[i], want, rel))
		}
	}
	fmt.Println("PASS kernel execution")
}

// runEarlyEventRelease is scenario 4: release the event from a
// non-blocking read immediately, then confirm the bytes arrived anyway
// via a subsequent blocking read of the same region.
func runEarlyEventRelease(c *client.Conn, ctx, queue uint64) {
	const size = 16 << 20
	seed := make([]byte, size)
	for i := range seed {
		seed[i] = byte((i * 7) & 0xFF)
	}
	mem, err := c.CreateBuffer(ctx, client.MemReadWrite|client.MemCopyHostPtr, size, seed)
	check("early event release: create", err)

	dst := make([]byte, size)
	eventID, err := c.EnqueueReadBuffer(queue, mem, false, 0, dst, true, nil)
	check("early event release: enqueue", err)
	check("early event release: release event", c.ReleaseEvent(eventID))

	confirm := make([]byte, size)
	_, err = c.EnqueueReadBuffer(queue, mem, true, 0, confirm, false, nil)
	check("early event release: confirm read", err)
	for i := range confirm {
		if confirm[i] != seed[i] {
			fail("early event release", fmt.Errorf("byte %d: got %d want %d", i, confirm[i], seed[i]))
		}
	}
	fmt.Println("PASS early event release")
}

// runUserEventGate is scenario 6: an NDRange whose wait list names a user
// event must stay submitted until that event completes.
func runUserEventGate(c *client.Conn, ctx, queue uint64) {
	prog, err := c.CreateProgramWithSource(ctx, "kernel noop(i0,N) { }")
	check("user event gate: create program", err)
	check("user event gate: build program", c.BuildProgram(prog))
	kernel, err := c.CreateKernel(prog, "noop")
	check("user event gate: create kernel", err)
	check("user event gate: set arg i0", c.SetKernelArgValue(kernel, 0, make([]byte, 4)))
	check("user event gate: set arg N", c.SetKernelArgValue(kernel, 1, make([]byte, 4)))

	gate, err := c.CreateUserEvent(ctx)
	check("user event gate: create user event", err)

	ndEvent, err := c.EnqueueNDRangeKernel(queue, kernel, []int{1}, true, []uint64{gate})
	check("user event gate: enqueue", err)

	status, err := c.EventCommandExecutionStatus(ndEvent)
	check("user event gate: status before gate", err)
	const clSubmitted = int32(2)
	if status != clSubmitted {
		fail("user event gate", fmt.Errorf("expected submitted before gate release, got %d", status))
	}

	check("user event gate: set gate complete", c.SetUserEventStatus(gate, 0))
	check("user event gate: wait", c.WaitForEvents([]uint64{ndEvent}))

	status, err = c.EventCommandExecutionStatus(ndEvent)
	check("user event gate: status after gate", err)
	const clComplete = int32(0)
	if status != clComplete {
		fail("user event gate", fmt.Errorf("expected complete after gate release, got %d", status))
	}
	fmt.Println("PASS user event gate")
}

func check(step string, err error) {
	if err != nil {
		fail(step, err)
	}
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", step, err)
	os.Exit(1)
}

func randomFloats(n int, seed uint32) []float32 {
	out := make([]float32, n)
	state := seed | 1
	for i := range out {
		state = state*1664525 + 1013904223
		out[i] = float32(state%1000) / 1000
	}
	return out
}

func floatsToBytes(f []float32) []byte {
	b := make([]byte, 4*len(f))
	for i, v := range f {
		bits := math.Float32bits(v)
		b[4*i+0] = byte(bits)
		b[4*i+1] = byte(bits >> 8)
		b[4*i+2] = byte(bits >> 16)
		b[4*i+3] = byte(bits >> 24)
	}
	return b
}

func bytesToFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}
