// Package mono provides a monotonic nanosecond clock for event timestamps
// (submitted/running/complete) used by profiling-info replies.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package mono

import "time"

var start = time.Now()

// NanoTime returns nanoseconds elapsed since process start, monotonic
// within a process (time.Since uses the runtime's monotonic reading).
func NanoTime() int64 { return int64(time.Since(start)) }
