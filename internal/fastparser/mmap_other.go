//go:build !unix

package fastparser

import (
	"fmt"
	"os"
)

// MmapFile reads the whole file on platforms without mmap. The cleanup
// function is a no-op kept so callers can treat both builds alike.
func MmapFile(filename string) ([]byte, func(), error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: %w", err)
	}
	return data, func() {}, nil
}
