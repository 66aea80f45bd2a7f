package recording

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestOpen_Raw(t *testing.T) {
	want := []byte("$GPGGA,123519,,,,,0,,,,,,,,*47\r\n\xB5\x62\x01\x07")
	path := writeFile(t, "raw.bin", want)

	rec, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !bytes.Equal(rec.Bytes(), want) {
		t.Fatalf("bytes=%q want %q", rec.Bytes(), want)
	}
	if rec.Len() != len(want) {
		t.Fatalf("len=%d want %d", rec.Len(), len(want))
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if rec.Bytes() != nil {
		t.Fatalf("expected nil bytes after close")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestOpen_Empty(t *testing.T) {
	rec, err := Open(writeFile(t, "empty.bin", nil))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rec.Close()
	if rec.Len() != 0 {
		t.Fatalf("len=%d want 0", rec.Len())
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "recording: open") {
		t.Fatalf("err=%q", err.Error())
	}
}

func TestOpen_HexLog(t *testing.T) {
	path := writeFile(t, "capture.log", []byte(`
# capture
START
0, b562
10, 0107 0000
`))
	rec, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rec.Close()
	want := []byte{0xB5, 0x62, 0x01, 0x07, 0x00, 0x00}
	if !bytes.Equal(rec.Bytes(), want) {
		t.Fatalf("bytes=%x want %x", rec.Bytes(), want)
	}
}

func TestOpen_HexLogInvalid(t *testing.T) {
	path := writeFile(t, "bad.log", []byte("START\nnot-a-valid-line\n"))
	if _, err := Open(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIsHexLog(t *testing.T) {
	cases := map[string]bool{
		"START\n0,00\n":      true,
		"\n# c\n  START  \n": true,
		"$GPGGA,1\nSTART\n":  false,
		"":                   false,
		"# only comments\n":  false,
	}
	for in, want := range cases {
		if got := isHexLog([]byte(in)); got != want {
			t.Fatalf("isHexLog(%q)=%v want %v", in, got, want)
		}
	}
}
