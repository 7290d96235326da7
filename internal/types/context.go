package types

// Valid environment types.
const (
	EnvContainer = "container"
	EnvVM        = "vm"
	EnvBareMetal = "bare-metal"
)

// SystemContext holds information about the host generating the report.
// It is populated by the context detection package.
type SystemContext struct {
	// OS contains operating system information.
	OS OSInfo

	// Distro contains Linux distribution information.
	Distro DistroInfo

	// Environment contains execution environment information.
	Environment EnvInfo
}

// OSInfo holds operating system details.
type OSInfo struct {
	// Name is the OS identifier (e.g., "linux", "darwin").
	Name string

	// Version is the kernel version string.
	Version string

	// Arch is the CPU architecture (e.g., "amd64", "arm64").
	Arch string
}

// DistroInfo holds Linux distribution details.
// Empty on non-Linux systems.
type DistroInfo struct {
	// ID is the distribution identifier (e.g., "ubuntu", "rhel", "alpine").
	ID string

	// Version is the distribution version (e.g., "22.04", "9", "3.18").
	Version string

	// Family is the distribution family (e.g., "debian", "rhel", "alpine").
	Family string
}

// EnvInfo holds execution environment details.
type EnvInfo struct {
	// Type is the environment category: "container", "vm", or "bare-metal".
	Type string

	// Runtime is the specific runtime (e.g., "docker", "podman", "kvm").
	Runtime string

	// Hostname is the system hostname (os.Hostname).
	Hostname string

	// CI is the CI provider running the suite, empty outside CI.
	CI string

	// CIBuild identifies the CI pipeline or job, when the provider exposes one.
	CIBuild string
}

// ToEnvironment flattens the detected context into the report's environment block.
func (c SystemContext) ToEnvironment() Environment {
	return Environment{
		Hostname:      c.Environment.Hostname,
		OS:            c.OS.Name,
		OSVersion:     c.OS.Version,
		Arch:          c.OS.Arch,
		DistroID:      c.Distro.ID,
		DistroVersion: c.Distro.Version,
		EnvType:       c.Environment.Type,
		EnvRuntime:    c.Environment.Runtime,
		CI:            c.Environment.CI,
		CIBuild:       c.Environment.CIBuild,
	}
}
