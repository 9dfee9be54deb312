package domain

// CPUFrequency is reported in MHz.
type CPUFrequency struct {
	Current float64 `json:"current_mhz"`
	Max     float64 `json:"max_mhz"`
}

// VirtualMemory mirrors the host memory counters in bytes.
type VirtualMemory struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Used      uint64  `json:"used"`
	Percent   float64 `json:"percent"`
}

// DiskUsage describes the filesystem mounted at Path.
type DiskUsage struct {
	Path    string  `json:"path"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// NetCounters are cumulative across all interfaces.
type NetCounters struct {
	BytesSent uint64 `json:"bytes_sent"`
	BytesRecv uint64 `json:"bytes_recv"`
	ErrIn     uint64 `json:"errin"`
	ErrOut    uint64 `json:"errout"`
}

// ProcessStats describes the dashboard's own process. Each field is queried
// separately, so one may be unavailable while the others are present.
type ProcessStats struct {
	MemPercent  Sample `json:"mem_percent"`
	Threads     Sample `json:"threads"`
	OpenFiles   Sample `json:"open_files"`
	Connections Sample `json:"connections"`
}

// HostInfo is the static-ish "general information" shown above the charts.
type HostInfo struct {
	Platform       string        `json:"platform"`
	Processor      string        `json:"processor"`
	Hostname       string        `json:"hostname"`
	Users          int           `json:"users"`
	RuntimeVersion string        `json:"runtime_version"`
	PhysicalCores  int           `json:"physical_cores"`
	LogicalCores   int           `json:"logical_cores"`
	Frequency      CPUFrequency  `json:"frequency"`
	Memory         VirtualMemory `json:"memory"`
	Disk           DiskUsage     `json:"disk"`
}
