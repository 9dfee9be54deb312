package domain

import (
	"strconv"
	"strings"
)

// SeriesID names one tracked metric series.
type SeriesID string

const (
	CPUTotal        SeriesID = "cpu.total"
	MemPercent      SeriesID = "mem.percent"
	DiskPercent     SeriesID = "disk.percent"
	ProcCount       SeriesID = "proc.count"
	NetBytesSent    SeriesID = "net.bytes_sent"
	NetBytesRecv    SeriesID = "net.bytes_recv"
	NetErrIn        SeriesID = "net.errin"
	NetErrOut       SeriesID = "net.errout"
	SelfMemPercent  SeriesID = "self.mem_percent"
	SelfThreads     SeriesID = "self.threads"
	SelfOpenFiles   SeriesID = "self.open_files"
	SelfConnections SeriesID = "self.connections"
)

const cpuCorePrefix = "cpu.core."

// CPUCore returns the series id of logical core i.
func CPUCore(i int) SeriesID {
	return SeriesID(cpuCorePrefix + strconv.Itoa(i))
}

// CoreIndex reports the core index encoded in id, if it is a per-core series.
func CoreIndex(id SeriesID) (int, bool) {
	rest, ok := strings.CutPrefix(string(id), cpuCorePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MetricSet lists every series tracked for a host with the given core count,
// in display order.
func MetricSet(cores int) []SeriesID {
	cores = max(cores, 0)
	ids := make([]SeriesID, 0, cores+12)
	ids = append(ids, CPUTotal)
	for i := range cores {
		ids = append(ids, CPUCore(i))
	}
	return append(ids,
		MemPercent,
		DiskPercent,
		ProcCount,
		NetBytesSent,
		NetBytesRecv,
		NetErrIn,
		NetErrOut,
		SelfMemPercent,
		SelfThreads,
		SelfOpenFiles,
		SelfConnections,
	)
}
