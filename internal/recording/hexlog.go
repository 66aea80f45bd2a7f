package recording

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Hex capture log format: line-oriented text.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
// - Line "START" begins a capture segment.
// - Data lines are: <t_ns>,<hex>
//   where t_ns is nanoseconds since START and hex is the raw receiver bytes.
//
// Timing is validated but not needed: the parser works on the byte stream.

const hexLogSniffBytes = 4096

// isHexLog reports whether the first meaningful line of data is START.
func isHexLog(data []byte) bool {
	if len(data) > hexLogSniffBytes {
		data = data[:hexLogSniffBytes]
	}
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		return string(line) == "START"
	}
	return false
}

// ReadHexLog decodes a hex capture log into the concatenated frame bytes.
func ReadHexLog(r io.Reader) ([]byte, error) {
	s := bufio.NewScanner(r)
	// Allow reasonably large frames.
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out bytes.Buffer
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || line == "START" {
			continue
		}

		tsStr, hexStr, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("hex log line %d: missing comma", lineNum)
		}
		tsStr = strings.TrimSpace(tsStr)
		hexStr = strings.ReplaceAll(strings.TrimSpace(hexStr), " ", "")
		if tsStr == "" || hexStr == "" {
			return nil, fmt.Errorf("hex log line %d: empty field", lineNum)
		}
		tsNs, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("hex log line %d: timestamp %q: %w", lineNum, tsStr, err)
		}
		if tsNs < 0 {
			return nil, fmt.Errorf("hex log line %d: negative timestamp", lineNum)
		}
		b, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, fmt.Errorf("hex log line %d: %w", lineNum, err)
		}
		out.Write(b)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
