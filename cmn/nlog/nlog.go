// Package nlog provides the daemon's leveled logger: line-buffered,
// timestamped, optionally mirrored to a file in addition to stderr.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package nlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) String() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

type logger struct {
	mu    sync.Mutex
	file  *os.File
	title string
}

var (
	toStderr     = true
	alsoToStderr bool
	lg           = &logger{title: "ocland"}
)

// SetTitle sets the short process tag prefixed to every line (e.g. "oclandd").
func SetTitle(s string) { lg.mu.Lock(); lg.title = s; lg.mu.Unlock() }

// SetOutput mirrors logging to the given file in addition to stderr.
func SetOutput(f *os.File) { lg.mu.Lock(); lg.file = f; lg.mu.Unlock() }

func log(sev severity, depth int, format string, args ...any) {
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg += "\n"
		}
	}
	now := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	lg.mu.Lock()
	line := fmt.Sprintf("%s [%s] %s %s", now, sev, lg.title, msg)
	if toStderr || alsoToStderr {
		fmt.Fprint(os.Stderr, line)
	}
	if lg.file != nil {
		fmt.Fprint(lg.file, line)
	}
	lg.mu.Unlock()
	_ = depth
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

// Flush is a no-op placeholder kept for call-site parity with buffered
// loggers; this implementation writes synchronously.
func Flush(...bool) {}
