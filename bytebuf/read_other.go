//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package bytebuf

import (
	"fmt"
	"io"
	"os"
)

// Open reads the named file into memory on platforms without mmap support.
func Open(name string) (*Buffer, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", name)
	}

	rawData := make([]byte, fileInfo.Size())
	if _, err := io.ReadFull(file, rawData); err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return New(rawData), nil
}
