package cpm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/z80kit/z80kit/pkg/memory"
	"github.com/z80kit/z80kit/pkg/z80"
)

func newMachine(t *testing.T) (*z80.CPU, *memory.PlainMemory, *bytes.Buffer) {
	t.Helper()
	mem := memory.New()
	var out bytes.Buffer
	bdos := New(&out)
	InstallTraps(mem)
	return z80.NewCPU(mem, bdos), mem, &out
}

// TestWriteString runs a CP/M program that prints via BDOS function 9 and
// returns to the warm-boot HALT.
func TestWriteString(t *testing.T) {
	cpu, mem, out := newMachine(t)

	mem.Load(0x0100, []uint8{
		0x0E, 0x09, // LD C, 9
		0x11, 0x09, 0x01, // LD DE, 0109h
		0xCD, 0x05, 0x00, // CALL 0005h
		0x76, // HALT
	})
	mem.Load(0x0109, []byte("HI$IGNORED"))

	cpu.Registers().Set16(z80.PC, 0x0100)
	cpu.Registers().Set16(z80.SP, 0xFF00)
	if err := cpu.Run(100000); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "HI" {
		t.Errorf("output = %q, want %q", out.String(), "HI")
	}
}

func TestConsoleOutput(t *testing.T) {
	cpu, mem, out := newMachine(t)

	mem.Load(0x0100, []uint8{
		0x0E, 0x02, // LD C, 2
		0x1E, 'Z', // LD E, 'Z'
		0xCD, 0x05, 0x00, // CALL 0005h
		0x76, // HALT
	})
	cpu.Registers().Set16(z80.PC, 0x0100)
	cpu.Registers().Set16(z80.SP, 0xFF00)
	if err := cpu.Run(100000); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "Z" {
		t.Errorf("output = %q, want %q", out.String(), "Z")
	}
}

// TestUnknownFunctionPanics: an unsupported BDOS call is a harness bug,
// not something to paper over.
func TestUnknownFunctionPanics(t *testing.T) {
	cpu, mem, _ := newMachine(t)

	mem.Load(0x0100, []uint8{
		0x0E, 0x63, // LD C, 99
		0xCD, 0x05, 0x00, // CALL 0005h
		0x76, // HALT
	})
	cpu.Registers().Set16(z80.PC, 0x0100)
	cpu.Registers().Set16(z80.SP, 0xFF00)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for BDOS function 99")
		}
		if !strings.Contains(r.(string), "function 99") {
			t.Errorf("panic message: %v", r)
		}
	}()
	_ = cpu.Run(100000)
}

func TestTrapLayout(t *testing.T) {
	mem := memory.New()
	InstallTraps(mem)
	if mem.Peek(0x0000) != 0x76 {
		t.Error("warm boot should be HALT")
	}
	if mem.Peek(0x0005) != 0xDB || mem.Peek(0x0006) != BdosPort || mem.Peek(0x0007) != 0xC9 {
		t.Error("BDOS stub should be IN A, (5) / RET")
	}
}
