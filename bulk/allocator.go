// Package bulk implements the asynchronous bulk-transfer subsystem (C7,
// spec §4.7): ephemeral TCP ports for large buffer/image reads and writes
// on worker threads, with compression and event-linked completion.
//
// Grounded on transport/bundle/dmover.go's mover-goroutine-managing-a-pool
// idiom and reb's worker-per-transfer, event-linked-completion convention
// (teacher: rockstar-0000-aistore).
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package bulk

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/sanguinariojoe/oclandgo/cmn/nlog"
	"golang.org/x/sys/unix"
)

// Allocator scans a configured port range for a free ephemeral listener
// (spec §4.7 "Port allocation policy"). On persistent failure the caller
// surfaces out-of-host-memory, per spec §4.7.
type Allocator struct {
	lo, hi int
	next   int
}

func NewAllocator(lo, hi int) *Allocator { return &Allocator{lo: lo, hi: hi, next: lo} }

const (
	scanSleep   = 5 * time.Millisecond
	maxScanPass = 3
)

// Listen returns a bound, listening TCP socket on a free port within the
// configured range, with SO_REUSEADDR set (spec §4.7).
func (a *Allocator) Listen() (net.Listener, int, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
		},
	}
	for pass := 0; pass < maxScanPass; pass++ {
		for p := a.lo; p <= a.hi; p++ {
			ln, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort("", strconv.Itoa(p)))
			if err == nil {
				return ln, p, nil
			}
		}
		nlog.Warningf("bulk: port range %d..%d exhausted, retrying (pass %d)", a.lo, a.hi, pass+1)
		time.Sleep(scanSleep)
	}
	return nil, 0, fmt.Errorf("bulk: no free port in %d..%d: out-of-host-memory", a.lo, a.hi)
}
