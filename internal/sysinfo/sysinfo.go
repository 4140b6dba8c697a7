// Package sysinfo reports what the bridge knows about the host it runs on.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// Info is the structured form of get_system_info.
type Info struct {
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	Hostname        string `json:"hostname,omitempty"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	UptimeSeconds   uint64 `json:"uptime_seconds,omitempty"`
}

// Summary is the one-line description, e.g. "System: linux". Apple hosts
// report "macos", the name the UI matches on.
func (i Info) Summary() string {
	name := i.OS
	if name == "darwin" {
		name = "macos"
	}
	return fmt.Sprintf("System: %s", name)
}

// hostInfo is swapped in tests.
var hostInfo = host.InfoWithContext

// Collect gathers host details. OS and Arch always come from the Go
// runtime; the rest is best effort and the returned error only reports
// what could not be read.
func Collect(ctx context.Context) (Info, error) {
	info := Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	hi, err := hostInfo(ctx)
	if err != nil {
		return info, fmt.Errorf("read host info: %w", err)
	}
	info.Hostname = hi.Hostname
	info.Platform = hi.Platform
	info.PlatformVersion = hi.PlatformVersion
	info.KernelVersion = hi.KernelVersion
	info.UptimeSeconds = hi.Uptime
	return info, nil
}
