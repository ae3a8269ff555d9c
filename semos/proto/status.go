package proto

import (
	"encoding/binary"
	"math"
	"time"
)

const statusVersion = 1

// StatusSize is the encoded length of a Status.
const StatusSize = 28

const (
	statusFlagActive = 1 << iota
	statusFlagStopped
)

// Status is one monitor snapshot as published on the status board.
type Status struct {
	State       uint8
	Active      bool
	Stopped     bool
	Remaining   time.Duration
	Cycles      uint32
	Transitions uint32
	FreeHeap    uint32
	Uptime      time.Duration
}

// StatusPayload encodes s.
//
// Layout (little-endian):
//   - u8: version
//   - u8: state index
//   - u8: flags (bit0=active, bit1=emergency stop latched)
//   - u8: reserved
//   - u32: time remaining in state, ms
//   - u32: cycle count
//   - u32: total transitions
//   - u32: free heap bytes (saturated)
//   - u64: uptime, ms
func StatusPayload(s Status) []byte {
	b := make([]byte, StatusSize)
	b[0] = statusVersion
	b[1] = s.State
	if s.Active {
		b[2] |= statusFlagActive
	}
	if s.Stopped {
		b[2] |= statusFlagStopped
	}
	binary.LittleEndian.PutUint32(b[4:8], saturate32(s.Remaining.Milliseconds()))
	binary.LittleEndian.PutUint32(b[8:12], s.Cycles)
	binary.LittleEndian.PutUint32(b[12:16], s.Transitions)
	binary.LittleEndian.PutUint32(b[16:20], s.FreeHeap)
	binary.LittleEndian.PutUint64(b[20:28], uint64(max(s.Uptime.Milliseconds(), 0)))
	return b
}

func DecodeStatus(b []byte) (Status, bool) {
	if len(b) != StatusSize || b[0] != statusVersion {
		return Status{}, false
	}
	return Status{
		State:       b[1],
		Active:      b[2]&statusFlagActive != 0,
		Stopped:     b[2]&statusFlagStopped != 0,
		Remaining:   time.Duration(binary.LittleEndian.Uint32(b[4:8])) * time.Millisecond,
		Cycles:      binary.LittleEndian.Uint32(b[8:12]),
		Transitions: binary.LittleEndian.Uint32(b[12:16]),
		FreeHeap:    binary.LittleEndian.Uint32(b[16:20]),
		Uptime:      time.Duration(binary.LittleEndian.Uint64(b[20:28])) * time.Millisecond,
	}, true
}

// SaturateHeap clamps a heap size to the u32 wire field.
func SaturateHeap(n uint64) uint32 {
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func saturate32(ms int64) uint32 {
	switch {
	case ms < 0:
		return 0
	case ms > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(ms)
	}
}
