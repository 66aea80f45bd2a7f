// Package recording acquires complete receiver recordings from disk.
//
// Two on-disk layouts are accepted:
// - raw receiver output, used as-is (memory-mapped on Linux)
// - hex capture logs, decoded into the concatenation of their frames
package recording

import (
	"bytes"
	"fmt"
)

type Recording struct {
	Path string

	data    []byte
	release func() error
	closed  bool
}

// Open loads path. Any error here means the recording is unavailable.
func Open(path string) (*Recording, error) {
	data, release, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("recording: open %s: %w", path, err)
	}
	if isHexLog(data) {
		frames, err := ReadHexLog(bytes.NewReader(data))
		_ = release()
		if err != nil {
			return nil, fmt.Errorf("recording: %s: %w", path, err)
		}
		return &Recording{Path: path, data: frames, release: noRelease}, nil
	}
	return &Recording{Path: path, data: data, release: release}, nil
}

// Bytes returns the recording contents. The slice is only valid until Close.
func (r *Recording) Bytes() []byte {
	if r == nil || r.closed {
		return nil
	}
	return r.data
}

func (r *Recording) Len() int { return len(r.Bytes()) }

func (r *Recording) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	r.data = nil
	return r.release()
}

func noRelease() error { return nil }
