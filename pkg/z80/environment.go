package z80

// Memory is the addressable-memory capability. The core addresses the full
// 16-bit space and never range-checks; implementations decide the backing.
type Memory interface {
	Peek(address uint16) uint8
	Poke(address uint16, value uint8)
}

// Io is the port capability invoked by the IN/OUT instruction actions. The
// full 16-bit port address is passed; policy for unknown ports belongs to
// the implementation.
type Io interface {
	PortIn(env *Environment, address uint16) uint8
	PortOut(env *Environment, address uint16, value uint8)
}

// Environment couples the register file with memory, ports and the running
// cycle counter for one emulated CPU instance. It is the single mutable
// point of truth while an instruction executes: every opcode action reads
// and writes machine state only through it.
type Environment struct {
	Reg    Registers
	Mem    Memory
	Io     Io
	Cycles uint64
	Halted bool

	// Index-prefix state, reset by the stepper before each instruction.
	index              Reg16 // HL, IX or IY
	displacement       int8
	displacementLoaded bool
}

// AdvancePC reads the byte at PC and advances PC by one, wrapping at the top
// of the address space. Used by the stepper for opcode bytes and by actions
// for immediate operands.
func (env *Environment) AdvancePC() uint8 {
	pc := env.Reg.Get16(PC)
	value := env.Mem.Peek(pc)
	env.Reg.Set16(PC, pc+1)
	return value
}

// AdvanceImmediate16 reads a little-endian 16-bit immediate at PC.
func (env *Environment) AdvanceImmediate16() uint16 {
	lo := uint16(env.AdvancePC())
	hi := uint16(env.AdvancePC())
	return hi<<8 | lo
}

// PeekWord reads a little-endian word; the second byte wraps with the
// address space.
func (env *Environment) PeekWord(address uint16) uint16 {
	return uint16(env.Mem.Peek(address)) | uint16(env.Mem.Peek(address+1))<<8
}

func (env *Environment) PokeWord(address uint16, value uint16) {
	env.Mem.Poke(address, uint8(value))
	env.Mem.Poke(address+1, uint8(value>>8))
}

// Push stores a word below SP (high byte at the higher address).
func (env *Environment) Push(value uint16) {
	sp := env.Reg.Get16(SP) - 2
	env.Reg.Set16(SP, sp)
	env.PokeWord(sp, value)
}

func (env *Environment) Pop() uint16 {
	sp := env.Reg.Get16(SP)
	value := env.PeekWord(sp)
	env.Reg.Set16(SP, sp+2)
	return value
}

// LoadDisplacement consumes the displacement byte of an (IX+d)/(IY+d)
// operand. It is a no-op unless r is the indirect slot, an index prefix is
// active and the displacement was not pre-read (the DD CB d op form loads
// it in the stepper). Actions with several operands may call it for each;
// only the first call does anything. Charges the 8 T-states of the indexed
// address calculation and reports whether a byte was consumed.
func (env *Environment) LoadDisplacement(r Reg8) bool {
	if r != IndirectHL || env.index == HL || env.displacementLoaded {
		return false
	}
	env.displacement = int8(env.AdvancePC())
	env.displacementLoaded = true
	env.Cycles += 8
	return true
}

// Get reads an 8-bit operand, resolving the indirect pseudo-register
// through memory.
func (env *Environment) Get(r Reg8) uint8 {
	if r == IndirectHL {
		return env.Mem.Peek(env.indirectAddress())
	}
	return env.Reg.Get8(r)
}

// Set writes an 8-bit operand, resolving the indirect pseudo-register
// through memory.
func (env *Environment) Set(r Reg8, value uint8) {
	if r == IndirectHL {
		env.Mem.Poke(env.indirectAddress(), value)
		return
	}
	env.Reg.Set8(r, value)
}

// Get16 reads a 16-bit operand with HL substituted by the active index
// register, so the same builder serves HL, IX and IY forms.
func (env *Environment) Get16(rr Reg16) uint16 {
	return env.Reg.Get16(env.translate16(rr))
}

func (env *Environment) Set16(rr Reg16, value uint16) {
	env.Reg.Set16(env.translate16(rr), value)
}

func (env *Environment) translate16(rr Reg16) Reg16 {
	if rr == HL {
		return env.index
	}
	return rr
}

// indirectAddress resolves the (HL)/(IX+d)/(IY+d) operand address. The
// displaced address wraps modulo the 16-bit space.
func (env *Environment) indirectAddress() uint16 {
	address := env.Reg.Get16(env.index)
	if env.index != HL && env.displacementLoaded {
		address += uint16(int16(env.displacement))
	}
	return address
}

func (env *Environment) setIndex(rr Reg16) {
	env.index = rr
}

func (env *Environment) clearIndex() {
	env.index = HL
	env.displacementLoaded = false
}

func (env *Environment) preloadDisplacement(d uint8) {
	env.displacement = int8(d)
	env.displacementLoaded = true
}

// fetch reads one opcode byte, advancing PC and ticking the low seven bits
// of the refresh register as the chip does per M1 cycle.
func (env *Environment) fetch() uint8 {
	env.Reg.data[R] = env.Reg.data[R]&0x80 | (env.Reg.data[R]+1)&0x7F
	return env.AdvancePC()
}
