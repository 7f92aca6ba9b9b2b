package debug

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFrameDumperDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	fd := NewFrameDumper(dir)

	var buf [256 * 240]uint32
	if err := fd.DumpFrameBuffer(buf, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no dump files while disabled, found %d", len(entries))
	}
}

func TestFrameDumperDumpUnexpectedColors(t *testing.T) {
	dir := t.TempDir()
	fd := NewFrameDumper(dir)
	fd.Enable()

	palette := [64]uint32{0x000000, 0xFFFFFF}
	var buf [256 * 240]uint32
	buf[0] = 0x123456 // not in the palette

	if err := fd.DumpUnexpectedColors(buf, 1, palette); err != nil {
		t.Fatalf("DumpUnexpectedColors: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "unexpected_colors_*.txt"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one dump file, found %d", len(matches))
	}
}
