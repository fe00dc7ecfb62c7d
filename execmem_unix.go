//go:build !windows

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// execRegion owns one page-aligned, read/write/execute memory mapping.
// Grounded on the teacher's hotreload_unix.go (AllocateExecutablePage /
// CopyCode), ported from raw syscall.Syscall6(SYS_MMAP, ...) to the
// typed golang.org/x/sys/unix wrappers the teacher already depends on
// for the same class of concern in filewatcher_unix.go.
type execRegion struct {
	data []byte
}

// newExecRegion allocates a region sized to the next page boundary above
// len(code), pre-fills it with RET (0xC3) so an accidental overshoot
// returns cleanly, and copies code into its prefix.
func newExecRegion(code []byte) (*execRegion, error) {
	pageSize := unix.Getpagesize()
	size := ((len(code) + pageSize - 1) / pageSize) * pageSize
	if size == 0 {
		size = pageSize
	}

	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("allocate executable region: %w", err)
	}

	for i := range data {
		data[i] = 0xC3
	}
	copy(data, code)

	return &execRegion{data: data}, nil
}

func (r *execRegion) Bytes() []byte { return r.data }

// Release unmaps the region. Safe to call more than once.
func (r *execRegion) Release() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if err != nil {
		return fmt.Errorf("release executable region: %w", err)
	}
	return nil
}
