package z80

import (
	"errors"
	"testing"
)

// ram is a flat in-package test memory.
type ram struct {
	data [0x10000]uint8
}

func (m *ram) Peek(address uint16) uint8        { return m.data[address] }
func (m *ram) Poke(address uint16, value uint8) { m.data[address] = value }

// ports records every port transaction and answers reads from a map.
type ports struct {
	reads  map[uint16]uint8
	writes []struct {
		address uint16
		value   uint8
	}
}

func (p *ports) PortIn(env *Environment, address uint16) uint8 {
	return p.reads[address]
}

func (p *ports) PortOut(env *Environment, address uint16, value uint8) {
	p.writes = append(p.writes, struct {
		address uint16
		value   uint8
	}{address, value})
}

// loadProgram assembles a fresh CPU around program bytes at 0000h with a
// HALT appended.
func loadProgram(code ...uint8) (*CPU, *ram, *ports) {
	mem := &ram{}
	copy(mem.data[:], code)
	mem.data[len(code)] = 0x76 // HALT
	io := &ports{reads: map[uint16]uint8{}}
	return NewCPU(mem, io), mem, io
}

func mustRun(t *testing.T, cpu *CPU) {
	t.Helper()
	if err := cpu.Run(100000); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestLoadAndAdd16(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x01, 0x34, 0x12, // LD BC, 1234h
		0x09, // ADD HL, BC
	)
	mustRun(t, cpu)
	if got := cpu.Registers().Get16(HL); got != 0x1234 {
		t.Errorf("HL = %04X, want 1234", got)
	}
	if cpu.Registers().Flag(FlagC) || cpu.Registers().Flag(FlagH) {
		t.Errorf("ADD HL, BC without carries: F=%02X", cpu.Registers().Get8(F))
	}
	// 10 + 11 + 4 (HALT)
	if cpu.Cycles() != 25 {
		t.Errorf("cycles = %d, want 25", cpu.Cycles())
	}
}

func TestImmediateAndRegisterMoves(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x3E, 0x42, // LD A, 42h
		0x47,       // LD B, A
		0x06, 0x99, // LD B, 99h  (overwrite)
		0x48, // LD C, B
	)
	mustRun(t, cpu)
	r := cpu.Registers()
	if r.Get8(A) != 0x42 || r.Get8(B) != 0x99 || r.Get8(C) != 0x99 {
		t.Errorf("A=%02X B=%02X C=%02X", r.Get8(A), r.Get8(B), r.Get8(C))
	}
}

func TestIndirectHL(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x21, 0x00, 0x80, // LD HL, 8000h
		0x36, 0x5A, // LD (HL), 5Ah
		0x7E, // LD A, (HL)
		0x34, // INC (HL)
	)
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 0x5A {
		t.Errorf("A = %02X", cpu.Registers().Get8(A))
	}
	if mem.data[0x8000] != 0x5B {
		t.Errorf("(8000h) = %02X, want 5B", mem.data[0x8000])
	}
}

// TestIndexedLoad: DD 7E d is LD A, (IX+d) at 19 T-states.
func TestIndexedLoad(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0xDD, 0x21, 0x00, 0x80, // LD IX, 8000h
		0xDD, 0x7E, 0x05, // LD A, (IX+5)
	)
	mem.data[0x8005] = 0xA7
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 0xA7 {
		t.Errorf("A = %02X, want A7", cpu.Registers().Get8(A))
	}
	// LD IX,nn = 14, LD A,(IX+5) = 19, HALT = 4
	if cpu.Cycles() != 37 {
		t.Errorf("cycles = %d, want 37", cpu.Cycles())
	}
}

// TestIndexedStoreImmediate: LD (IX+d), n costs 19 T-states, not the sum
// of the parts; the displacement and immediate fetches share machine
// cycles.
func TestIndexedStoreImmediate(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0xDD, 0x36, 0x05, 0x7A, // LD (IX+5), 7Ah
	)
	mustRun(t, cpu)
	if mem.data[0x0005] != 0x7A {
		t.Errorf("(0005h) = %02X, want 7A", mem.data[0x0005])
	}
	// 19 + 4 (HALT)
	if cpu.Cycles() != 23 {
		t.Errorf("cycles = %d, want 23", cpu.Cycles())
	}
}

func TestIndexedNegativeDisplacement(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0xFD, 0x21, 0x05, 0x80, // LD IY, 8005h
		0xFD, 0x36, 0xFB, 0x99, // LD (IY-5), 99h
	)
	mustRun(t, cpu)
	if mem.data[0x8000] != 0x99 {
		t.Errorf("(8000h) = %02X, want 99", mem.data[0x8000])
	}
}

// TestIndexedBitOps: the DD CB d op form carries the displacement before
// the final opcode byte; SET on memory costs 23 T-states.
func TestIndexedBitOps(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0xDD, 0x21, 0x00, 0x80, // LD IX, 8000h
		0xDD, 0xCB, 0x03, 0xC6, // SET 0, (IX+3)
	)
	mustRun(t, cpu)
	if mem.data[0x8003] != 0x01 {
		t.Errorf("(8003h) = %02X, want 01", mem.data[0x8003])
	}
	// 14 + 23 + 4
	if cpu.Cycles() != 41 {
		t.Errorf("cycles = %d, want 41", cpu.Cycles())
	}
}

// TestBitDoesNotMutate: BIT reads flags only.
func TestBitDoesNotMutate(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x21, 0x00, 0x80, // LD HL, 8000h
		0xCB, 0x46, // BIT 0, (HL)
	)
	mem.data[0x8000] = 0xFF
	mustRun(t, cpu)
	if mem.data[0x8000] != 0xFF {
		t.Error("BIT modified memory")
	}
	if cpu.Registers().Flag(FlagZ) {
		t.Error("BIT 0 of FF should clear Z")
	}
}

func TestSetResRoundTrip(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x3E, 0x00, // LD A, 0
		0xCB, 0xEF, // SET 5, A
		0xCB, 0xAF, // RES 5, A
	)
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 0 {
		t.Errorf("A = %02X after SET/RES pair", cpu.Registers().Get8(A))
	}
}

func TestCallRetStackDiscipline(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x31, 0x00, 0xFF, // LD SP, FF00h
		0xCD, 0x10, 0x00, // CALL 0010h
	)
	// HALT is at 0006 (appended). Subroutine at 0010: LD A, 7 / RET.
	mem.data[0x0010] = 0x3E
	mem.data[0x0011] = 0x07
	mem.data[0x0012] = 0xC9
	mustRun(t, cpu)
	r := cpu.Registers()
	if r.Get8(A) != 0x07 {
		t.Errorf("A = %02X, subroutine did not run", r.Get8(A))
	}
	if r.Get16(SP) != 0xFF00 {
		t.Errorf("SP = %04X, want FF00 restored", r.Get16(SP))
	}
	if r.Get16(PC) != 0x0007 {
		t.Errorf("PC = %04X, want 0007 (after HALT)", r.Get16(PC))
	}
}

// TestConditionalTiming: RET cc costs 5 not taken, 11 taken.
func TestConditionalTiming(t *testing.T) {
	cpu, _, _ := loadProgram(
		0xAF, // XOR A (sets Z)
		0xC0, // RET NZ (not taken)
	)
	mustRun(t, cpu)
	// 4 + 5 + 4
	if cpu.Cycles() != 13 {
		t.Errorf("cycles = %d, want 13", cpu.Cycles())
	}

	cpu, _, _ = loadProgram(
		0x31, 0x00, 0xFF, // LD SP, FF00h
		0xAF,             // XOR A
		0x20, 0x01,       // JR NZ, +1 (not taken: 7T)
		0x28, 0x00,       // JR Z, +0 (taken: 12T)
	)
	mustRun(t, cpu)
	// 10 + 4 + 7 + 12 + 4
	if cpu.Cycles() != 37 {
		t.Errorf("cycles = %d, want 37", cpu.Cycles())
	}
}

func TestDjnzLoop(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x06, 0x05, // LD B, 5
		0x3C,       // INC A
		0x10, 0xFD, // DJNZ -3
	)
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 5 {
		t.Errorf("A = %02X, want 05", cpu.Registers().Get8(A))
	}
	if cpu.Registers().Get8(B) != 0 {
		t.Errorf("B = %02X, want 00", cpu.Registers().Get8(B))
	}
}

func TestLdir(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x21, 0x00, 0x80, // LD HL, 8000h
		0x11, 0x00, 0x90, // LD DE, 9000h
		0x01, 0x04, 0x00, // LD BC, 4
		0xED, 0xB0, // LDIR
	)
	copy(mem.data[0x8000:], []uint8{0xDE, 0xAD, 0xBE, 0xEF})
	mustRun(t, cpu)
	for i, want := range []uint8{0xDE, 0xAD, 0xBE, 0xEF} {
		if mem.data[0x9000+i] != want {
			t.Errorf("(%04X) = %02X, want %02X", 0x9000+i, mem.data[0x9000+i], want)
		}
	}
	r := cpu.Registers()
	if r.Get16(BC) != 0 {
		t.Errorf("BC = %04X after LDIR", r.Get16(BC))
	}
	if r.Get16(HL) != 0x8004 || r.Get16(DE) != 0x9004 {
		t.Errorf("HL=%04X DE=%04X", r.Get16(HL), r.Get16(DE))
	}
	if r.Flag(FlagP) {
		t.Error("P should clear once BC reaches zero")
	}
	// 10+10+10 + 21*3+16 + 4
	if cpu.Cycles() != 113 {
		t.Errorf("cycles = %d, want 113", cpu.Cycles())
	}
}

func TestCpir(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x21, 0x00, 0x80, // LD HL, 8000h
		0x01, 0x10, 0x00, // LD BC, 16
		0x3E, 0x33, // LD A, 33h
		0xED, 0xB1, // CPIR
	)
	mem.data[0x8003] = 0x33
	mustRun(t, cpu)
	r := cpu.Registers()
	if !r.Flag(FlagZ) {
		t.Error("CPIR should stop on match with Z set")
	}
	if r.Get16(HL) != 0x8004 {
		t.Errorf("HL = %04X, want one past the match", r.Get16(HL))
	}
	if r.Get16(BC) != 12 {
		t.Errorf("BC = %04X, want 12 remaining", r.Get16(BC))
	}
}

func TestExchanges(t *testing.T) {
	cpu, mem, _ := loadProgram(
		0x21, 0x11, 0x11, // LD HL, 1111h
		0x11, 0x22, 0x22, // LD DE, 2222h
		0xEB,             // EX DE, HL
		0x31, 0x00, 0xFF, // LD SP, FF00h
		0xE5, // PUSH HL
		0xE3, // EX (SP), HL
	)
	mem.data[0xFEFE] = 0 // will hold 2222h after PUSH
	mustRun(t, cpu)
	r := cpu.Registers()
	if r.Get16(DE) != 0x1111 {
		t.Errorf("DE = %04X, want 1111", r.Get16(DE))
	}
	// PUSH put 2222 on the stack; EX (SP),HL swaps it with HL (2222), a
	// fixed point, so both remain 2222.
	if r.Get16(HL) != 0x2222 {
		t.Errorf("HL = %04X, want 2222", r.Get16(HL))
	}
}

func TestPortIO(t *testing.T) {
	cpu, _, io := loadProgram(
		0x3E, 0x12, // LD A, 12h
		0xDB, 0x34, // IN A, (34h)
		0x01, 0x05, 0x00, // LD BC, 0005h
		0xED, 0x79, // OUT (C), A
	)
	io.reads[0x1234] = 0x56
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 0x56 {
		t.Errorf("A = %02X after IN", cpu.Registers().Get8(A))
	}
	if len(io.writes) != 1 || io.writes[0].address != 0x0005 || io.writes[0].value != 0x56 {
		t.Errorf("writes = %+v", io.writes)
	}
}

func TestInterruptState(t *testing.T) {
	cpu, _, _ := loadProgram(
		0xFB,       // EI
		0xED, 0x56, // IM 1
		0xF3, // DI
	)
	mustRun(t, cpu)
	r := cpu.Registers()
	if r.IFF1 || r.IFF2 {
		t.Error("DI should clear both flip-flops")
	}
	if r.IM != 1 {
		t.Errorf("IM = %d, want 1", r.IM)
	}
}

func TestHaltThenStep(t *testing.T) {
	cpu, _, _ := loadProgram() // bare HALT
	mustRun(t, cpu)
	if !cpu.Halted() {
		t.Fatal("not halted")
	}
	if _, err := cpu.Step(); !errors.Is(err, ErrHalted) {
		t.Errorf("Step after halt: %v", err)
	}
	cpu.Reset()
	if cpu.Halted() || cpu.Cycles() != 0 {
		t.Error("Reset should clear halt and cycles")
	}
}

func TestUnimplementedOpcodeFault(t *testing.T) {
	cpu, _, _ := loadProgram(0xED, 0xA2) // INI, not implemented
	_, err := cpu.Step()
	var fault *UnimplementedOpcodeError
	if !errors.As(err, &fault) {
		t.Fatalf("want UnimplementedOpcodeError, got %v", err)
	}
	if fault.Prefix != 0xED || fault.Code != 0xA2 {
		t.Errorf("fault = %+v", fault)
	}
}

// TestPrefixSaturation: memory holding nothing but prefix bytes can never
// complete an instruction; Step must report that instead of spinning.
func TestPrefixSaturation(t *testing.T) {
	mem := &ram{}
	for i := range mem.data {
		mem.data[i] = 0xDD
	}
	cpu := NewCPU(mem, &ports{})
	if _, err := cpu.Step(); !errors.Is(err, ErrPrefixLoop) {
		t.Errorf("Step: %v, want ErrPrefixLoop", err)
	}
}

func TestCycleLimit(t *testing.T) {
	cpu, _, _ := loadProgram(0x18, 0xFE) // JR -2: spin forever
	if err := cpu.Run(1000); !errors.Is(err, ErrCycleLimit) {
		t.Errorf("Run: %v, want cycle limit", err)
	}
}

// TestRefreshRegister: R's low seven bits tick once per fetched opcode
// byte, prefixes included; bit 7 is held.
func TestRefreshRegister(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x00,       // NOP
		0xDD, 0x23, // INC IX (two fetches)
	)
	cpu.Registers().Set8(R, 0x80)
	mustRun(t, cpu)
	// NOP + DD + 23 + HALT = 4 fetches
	if got := cpu.Registers().Get8(R); got != 0x84 {
		t.Errorf("R = %02X, want 84", got)
	}
}

func TestMemoryWrapAround(t *testing.T) {
	mem := &ram{}
	mem.data[0xFFFF] = 0x3E // LD A, n
	mem.data[0x0000] = 0x77
	mem.data[0x0001] = 0x76 // HALT
	cpu := NewCPU(mem, &ports{reads: map[uint16]uint8{}})
	cpu.Registers().Set16(PC, 0xFFFF)
	mustRun(t, cpu)
	if cpu.Registers().Get8(A) != 0x77 {
		t.Errorf("A = %02X, PC wrap failed", cpu.Registers().Get8(A))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cpu, _, _ := loadProgram(
		0x01, 0x34, 0x12, // LD BC, 1234h
		0xDD, 0x21, 0xCD, 0xAB, // LD IX, ABCDh
		0xFB, // EI
	)
	mustRun(t, cpu)
	snap := cpu.Snapshot()

	other := NewCPU(&ram{}, &ports{})
	other.Restore(snap)
	if other.Registers().Get16(BC) != 0x1234 || other.Registers().Get16(IX) != 0xABCD {
		t.Error("restored registers differ")
	}
	if !other.Registers().IFF1 || other.Cycles() != cpu.Cycles() {
		t.Error("restored interrupt state or cycles differ")
	}
	if other.Snapshot() != snap {
		t.Error("snapshot not a fixed point of restore")
	}
}
