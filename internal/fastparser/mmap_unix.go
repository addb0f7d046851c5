//go:build unix

package fastparser

import (
	"fmt"
	"os"
	"syscall"
)

// MmapFile memory-maps a file read-only and returns the mapping with a
// cleanup function that unmaps it and closes the file.
//
// Batch runs map each export once and decode or parse straight from the
// mapping:
//
//	data, cleanup, err := MmapFile("export.psv")
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
//	records, err := ParseRecords(data, Options{Delimiter: "|"})
//
// Do not use data after calling cleanup. Strings returned by ParseRecords
// are copies and stay valid.
func MmapFile(filename string) ([]byte, func(), error) {
	// Open the file
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: %w", err)
	}

	// Get file size
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mmap: stat: %w", err)
	}

	size := stat.Size()
	if size == 0 {
		// Empty file - return empty slice and cleanup that just closes the file
		return []byte{}, func() { f.Close() }, nil
	}

	// Memory-map the file
	data, err := syscall.Mmap(
		int(f.Fd()),
		0,
		int(size),
		syscall.PROT_READ,
		syscall.MAP_SHARED,
	)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mmap %s: %w", filename, err)
	}

	// Create cleanup function that unmaps and closes
	cleanup := func() {
		_ = syscall.Munmap(data)
		f.Close()
	}

	return data, cleanup, nil
}
