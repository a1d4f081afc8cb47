// Package snapshot persists whole-machine images (CPU plus RAM) with gob,
// so a run can be suspended and resumed from disk.
package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/z80kit/z80kit/pkg/memory"
	"github.com/z80kit/z80kit/pkg/z80"
)

// Image is one suspended machine: architectural CPU state and the full
// 64K memory contents.
type Image struct {
	CPU z80.Snapshot
	RAM []byte
}

// Save writes the machine image to path atomically enough for a harness:
// temp file then rename.
func Save(path string, cpu *z80.CPU, mem *memory.PlainMemory) error {
	img := Image{CPU: cpu.Snapshot(), RAM: mem.Bytes()}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(&img); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads a machine image from path and restores it into cpu and mem.
func Load(path string, cpu *z80.CPU, mem *memory.PlainMemory) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var img Image
	if err := gob.NewDecoder(f).Decode(&img); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if len(img.RAM) != 0x10000 {
		return fmt.Errorf("snapshot RAM is %d bytes, want 65536", len(img.RAM))
	}
	cpu.Restore(img.CPU)
	mem.SetBytes(img.RAM)
	return nil
}
