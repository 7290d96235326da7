// Package context describes the host a report is generated on and reads the
// suite's environment.properties.
package context

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/ancients-collective/allurexl/internal/types"
)

// Detector describes the host generating a report.
type Detector interface {
	Detect() (types.SystemContext, error)
}

// containerSystems are the virtualization systems gopsutil reports for
// containers. Any other guest system is a VM.
var containerSystems = map[string]bool{
	"docker":         true,
	"lxc":            true,
	"podman":         true,
	"openvz":         true,
	"rkt":            true,
	"systemd-nspawn": true,
}

// HostDetector reads the host through gopsutil and the CI provider from
// the process environment.
type HostDetector struct {
	info   func() (*host.InfoStat, error)
	getenv func(string) string
}

// NewDetector returns a HostDetector for the running process.
func NewDetector() *HostDetector {
	return &HostDetector{info: host.Info, getenv: os.Getenv}
}

// Detect returns the host context. CI detection always runs, so on error
// the context still carries the runtime OS values and the CI provider.
func (d *HostDetector) Detect() (types.SystemContext, error) {
	ctx := types.SystemContext{
		OS: types.OSInfo{Name: runtime.GOOS, Arch: runtime.GOARCH},
	}
	ctx.Environment.CI, ctx.Environment.CIBuild = DetectCI(d.getenv)

	info, err := d.info()
	if err != nil {
		return ctx, fmt.Errorf("reading host info: %w", err)
	}

	ctx.Environment.Hostname = info.Hostname
	if info.OS != "" {
		ctx.OS.Name = info.OS
	}
	if ctx.OS.Name == "linux" {
		ctx.OS.Version = info.KernelVersion
		ctx.Distro = types.DistroInfo{
			ID:      info.Platform,
			Version: info.PlatformVersion,
			Family:  info.PlatformFamily,
		}
	} else {
		ctx.OS.Version = info.PlatformVersion
	}

	ctx.Environment.Type, ctx.Environment.Runtime = environmentType(info.VirtualizationRole, info.VirtualizationSystem)
	return ctx, nil
}

// environmentType maps gopsutil's virtualization role and system to an
// environment type and runtime.
func environmentType(role, system string) (string, string) {
	if role != "guest" || system == "" {
		return types.EnvBareMetal, ""
	}
	if containerSystems[system] {
		return types.EnvContainer, system
	}
	return types.EnvVM, system
}

// Environment runs detection and flattens the result into the report's
// environment block. A report never fails because of detection: on error
// the partial context is used and a warning is logged.
func Environment(d Detector, logger *slog.Logger) types.Environment {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, err := d.Detect()
	if err != nil {
		logger.Warn("host detection failed, using runtime defaults", "error", err)
	}

	env := ctx.ToEnvironment()
	if env.Hostname == "" {
		if h, err := os.Hostname(); err == nil {
			env.Hostname = h
		}
	}
	logger.Debug("host detected", "host", env.Hostname, "os", env.OS, "env", env.EnvType, "ci", env.CI)
	return env
}
