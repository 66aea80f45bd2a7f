//go:build linux

package recording

import (
	"os"

	"golang.org/x/sys/unix"
)

// load maps the file read-only. Empty files are returned without a mapping.
func load(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := st.Size()
	if size == 0 || !st.Mode().IsRegular() {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return b, noRelease, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
