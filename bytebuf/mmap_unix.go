//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package bytebuf

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps the named file read-only under a shared advisory lock. The lock,
// the mapping and the descriptor are all released by Close; on error nothing
// is left acquired.
func Open(name string) (*Buffer, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fd := int(file.Fd())

	if err := unix.Flock(fd, unix.LOCK_SH); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to lock file: %w", err)
	}
	unlockAndClose := func() error {
		_ = unix.Flock(fd, unix.LOCK_UN)
		return file.Close()
	}

	fileInfo, err := file.Stat()
	if err != nil {
		_ = unlockAndClose()
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		_ = unlockAndClose()
		return nil, fmt.Errorf("not a regular file: %s", name)
	}

	size := fileInfo.Size()
	if size == 0 {
		// mmap rejects zero-length mappings.
		return &Buffer{data: []byte{}, release: unlockAndClose}, nil
	}
	if int64(int(size)) != size {
		_ = unlockAndClose()
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		_ = unlockAndClose()
		return nil, fmt.Errorf("failed to map file: %w", err)
	}

	return &Buffer{
		data: data,
		release: func() error {
			unmapErr := unix.Munmap(data)
			closeErr := unlockAndClose()
			if unmapErr != nil {
				return fmt.Errorf("failed to unmap file: %w", unmapErr)
			}
			return closeErr
		},
	}, nil
}
