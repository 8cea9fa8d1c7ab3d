// Package sysinfo is a default request service answering basic host
// telemetry requests, ported from original_source/src/default_services/sysinfo.rs.
// No third-party system-info library exists anywhere in the retrieval
// pack (the Rust original used the "sysinfo" crate, which has no Go
// counterpart among the example repos), so this one default service is
// built on the standard library (runtime, os) instead.
package sysinfo

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/z3phyrl/zeitop/internal/embed"
)

var startedAt = time.Now()

// Run registers "sysinfo" as a request service at addr and serves
// requests until the connection fails, returning the resulting error.
func Run(addr string) error {
	svc, err := embed.OpenRequestService(addr, "sysinfo")
	if err != nil {
		return err
	}
	defer svc.Close()

	for {
		req, err := svc.Next()
		if err != nil {
			return err
		}
		handle(req)
	}
}

func handle(req *embed.Request) {
	switch req.Data {
	case "host":
		host, err := os.Hostname()
		if err != nil {
			req.Error(err.Error())
			return
		}
		req.Text(host)
	case "uptime":
		req.Text(fmt.Sprintf("%d", int64(time.Since(startedAt).Seconds())))
	case "cpu_count":
		req.Text(fmt.Sprintf("%d", runtime.NumCPU()))
	case "total_mem", "used_mem":
		// The standard library does not expose system memory totals;
		// report this process's own allocation figures instead of
		// fabricating a host-wide value.
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		if req.Data == "total_mem" {
			req.Text(fmt.Sprintf("%d", m.Sys))
		} else {
			req.Text(fmt.Sprintf("%d", m.Alloc))
		}
	default:
		req.Error("Invalid Request")
	}
}
