// Package main is the ocland daemon: it accepts client connections,
// pairs each primary stream with the callbacks stream dialled right
// after it (spec §4.6), and drives one dispatcher session per client
// against a software accelerator backend.
/*
 * Copyright (c) 2018-2024, ocland contributors. All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanguinariojoe/oclandgo/cmn/nlog"
	"github.com/sanguinariojoe/oclandgo/runtime/cpudevice"
	"github.com/sanguinariojoe/oclandgo/server"
)

var (
	build     string
	buildtime string

	primaryPort int
	asyncLo     int
	asyncHi     int
)

func init() {
	cfg := server.DefaultConfig()
	flag.IntVar(&primaryPort, "port", cfg.PrimaryPort, "primary listening port")
	flag.IntVar(&asyncLo, "async-port-lo", cfg.AsyncPortLo, "lowest ephemeral bulk-transfer port")
	flag.IntVar(&asyncHi, "async-port-hi", cfg.AsyncPortHi, "highest ephemeral bulk-transfer port")
}

func main() {
	if len(os.Args) == 2 && os.Args[1] == "version" {
		fmt.Printf("oclandd %s (build %s)\n", "0.1", buildtime)
		os.Exit(0)
	}
	flag.Parse()
	installSignalHandler()

	cfg := server.Config{PrimaryPort: primaryPort, AsyncPortLo: asyncLo, AsyncPortHi: asyncHi}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.PrimaryPort))
	if err != nil {
		nlog.Errorf("listen on :%d: %v", cfg.PrimaryPort, err)
		os.Exit(1)
	}
	nlog.Infof("oclandd listening on %s, bulk ports %d-%d", ln.Addr(), cfg.AsyncPortLo, cfg.AsyncPortHi)

	dev := cpudevice.New()
	for {
		primary, err := ln.Accept()
		if err != nil {
			nlog.Warningf("accept: %v", err)
			continue
		}
		cb, err := ln.Accept()
		if err != nil {
			nlog.Warningf("accept callbacks stream: %v", err)
			primary.Close()
			continue
		}
		s := server.NewSession(primary, dev, cfg)
		s.AttachCallbacks(cb)
		go s.Serve()
	}
}

func installSignalHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		nlog.Flush()
		os.Exit(0)
	}()
}
