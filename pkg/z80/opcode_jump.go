package z80

import "fmt"

// Control-flow, port I/O, interrupt-mode and block-transfer builders.
//
// Conditional branches carry the not-taken cost as the base TStates and add
// the documented taken delta inside the action.

type condition struct {
	name     string
	flag     uint8
	expected bool
}

var tableCC = [8]condition{
	{"NZ", FlagZ, false},
	{"Z", FlagZ, true},
	{"NC", FlagC, false},
	{"C", FlagC, true},
	{"PO", FlagP, false},
	{"PE", FlagP, true},
	{"P", FlagS, false},
	{"M", FlagS, true},
}

func (c condition) met(r *Registers) bool {
	return r.Flag(c.flag) == c.expected
}

func buildJpNN() Opcode {
	return Opcode{
		Name:    "JP XX",
		Bytes:   3,
		TStates: 10,
		action: func(env *Environment) {
			env.Reg.Set16(PC, env.AdvanceImmediate16())
		},
	}
}

// The immediate is always consumed, taken or not; JP cc costs 10 either way.
func buildJpCC(y int) Opcode {
	cc := tableCC[y]
	return Opcode{
		Name:    "JP " + cc.name + ", XX",
		Bytes:   3,
		TStates: 10,
		action: func(env *Environment) {
			target := env.AdvanceImmediate16()
			if cc.met(&env.Reg) {
				env.Reg.Set16(PC, target)
			}
		},
	}
}

// JP (HL): the jump target is the register itself, not memory, despite the
// traditional mnemonic. Index prefixes turn it into JP (IX)/(IY).
func buildJpHL() Opcode {
	return Opcode{
		Name:    "JP (HL)",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Reg.Set16(PC, env.Get16(HL))
		},
	}
}

func relativeJump(env *Environment) {
	offset := int8(env.AdvancePC())
	env.Reg.Set16(PC, env.Reg.Get16(PC)+uint16(int16(offset)))
}

func buildJrD() Opcode {
	return Opcode{
		Name:    "JR X",
		Bytes:   2,
		TStates: 12,
		action:  relativeJump,
	}
}

func buildJrCC(y int) Opcode {
	cc := tableCC[y]
	return Opcode{
		Name:    "JR " + cc.name + ", X",
		Bytes:   2,
		TStates: 7,
		action: func(env *Environment) {
			if cc.met(&env.Reg) {
				relativeJump(env)
				env.Cycles += 5
			} else {
				env.AdvancePC()
			}
		},
	}
}

func buildDjnz() Opcode {
	return Opcode{
		Name:    "DJNZ X",
		Bytes:   2,
		TStates: 8,
		action: func(env *Environment) {
			b := env.Reg.Get8(B) - 1
			env.Reg.Set8(B, b)
			if b != 0 {
				relativeJump(env)
				env.Cycles += 5
			} else {
				env.AdvancePC()
			}
		},
	}
}

func buildCallNN() Opcode {
	return Opcode{
		Name:    "CALL XX",
		Bytes:   3,
		TStates: 17,
		action: func(env *Environment) {
			target := env.AdvanceImmediate16()
			env.Push(env.Reg.Get16(PC))
			env.Reg.Set16(PC, target)
		},
	}
}

func buildCallCC(y int) Opcode {
	cc := tableCC[y]
	return Opcode{
		Name:    "CALL " + cc.name + ", XX",
		Bytes:   3,
		TStates: 10,
		action: func(env *Environment) {
			target := env.AdvanceImmediate16()
			if cc.met(&env.Reg) {
				env.Push(env.Reg.Get16(PC))
				env.Reg.Set16(PC, target)
				env.Cycles += 7
			}
		},
	}
}

func buildRet() Opcode {
	return Opcode{
		Name:    "RET",
		Bytes:   1,
		TStates: 10,
		action: func(env *Environment) {
			env.Reg.Set16(PC, env.Pop())
		},
	}
}

func buildRetCC(y int) Opcode {
	cc := tableCC[y]
	return Opcode{
		Name:    "RET " + cc.name,
		Bytes:   1,
		TStates: 5,
		action: func(env *Environment) {
			if cc.met(&env.Reg) {
				env.Reg.Set16(PC, env.Pop())
				env.Cycles += 6
			}
		},
	}
}

func buildRst(y int) Opcode {
	target := uint16(y * 8)
	return Opcode{
		Name:    fmt.Sprintf("RST %02Xh", target),
		Bytes:   1,
		TStates: 11,
		action: func(env *Environment) {
			env.Push(env.Reg.Get16(PC))
			env.Reg.Set16(PC, target)
		},
	}
}

// RETN restores IFF1 from IFF2 on the way out of the service routine; the
// chip does the same for RETI, so both share the body.
func buildRetn(name string) Opcode {
	return Opcode{
		Name:    name,
		Bytes:   2,
		TStates: 14,
		action: func(env *Environment) {
			env.Reg.IFF1 = env.Reg.IFF2
			env.Reg.Set16(PC, env.Pop())
		},
	}
}

// IN A, (n): port address is A on the high byte, n on the low. No flags.
func buildInAN() Opcode {
	return Opcode{
		Name:    "IN A, (X)",
		Bytes:   2,
		TStates: 11,
		action: func(env *Environment) {
			address := uint16(env.Reg.Get8(A))<<8 | uint16(env.AdvancePC())
			env.Reg.Set8(A, env.Io.PortIn(env, address))
		},
	}
}

func buildOutNA() Opcode {
	return Opcode{
		Name:    "OUT (X), A",
		Bytes:   2,
		TStates: 11,
		action: func(env *Environment) {
			address := uint16(env.Reg.Get8(A))<<8 | uint16(env.AdvancePC())
			env.Io.PortOut(env, address, env.Reg.Get8(A))
		},
	}
}

// IN r, (C): port address is the full BC, flags from the value read. The
// y=6 slot reads and sets flags but stores nothing (the undocumented
// IN (C) form, kept because programs probe flags with it).
func buildInRC(y int) Opcode {
	reg := tableR[y]
	name := "IN " + tableRName[y] + ", (C)"
	if reg == IndirectHL {
		name = "IN (C)"
	}
	return Opcode{
		Name:    name,
		Bytes:   2,
		TStates: 12,
		action: func(env *Environment) {
			v := env.Io.PortIn(env, env.Reg.Get16(BC))
			if reg != IndirectHL {
				env.Reg.Set8(reg, v)
			}
			env.Reg.data[F] = env.Reg.data[F]&FlagC | Sz53pTable[v]
		},
	}
}

// OUT (C), r; the y=6 slot writes zero (OUT (C), 0 on NMOS parts).
func buildOutCR(y int) Opcode {
	reg := tableR[y]
	name := "OUT (C), " + tableRName[y]
	if reg == IndirectHL {
		name = "OUT (C), 0"
	}
	return Opcode{
		Name:    name,
		Bytes:   2,
		TStates: 12,
		action: func(env *Environment) {
			var v uint8
			if reg != IndirectHL {
				v = env.Reg.Get8(reg)
			}
			env.Io.PortOut(env, env.Reg.Get16(BC), v)
		},
	}
}

func buildDi() Opcode {
	return Opcode{
		Name:    "DI",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Reg.IFF1 = false
			env.Reg.IFF2 = false
		},
	}
}

func buildEi() Opcode {
	return Opcode{
		Name:    "EI",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Reg.IFF1 = true
			env.Reg.IFF2 = true
		},
	}
}

func buildIm(mode uint8) Opcode {
	return Opcode{
		Name:    fmt.Sprintf("IM %d", mode),
		Bytes:   2,
		TStates: 8,
		action: func(env *Environment) {
			env.Reg.IM = mode
		},
	}
}

// buildLdBlock covers LDI, LDD, LDIR and LDDR. One byte moves from (HL) to
// (DE) per step, BC counts down; P reports BC!=0, H and N clear, the bit
// echoes come from value+A. The repeating forms rewind PC while BC remains,
// re-fetching the instruction each iteration as the chip does.
func buildLdBlock(name string, increment bool, repeat bool) Opcode {
	var delta uint16 = 1
	if !increment {
		delta = 0xFFFF
	}
	return Opcode{
		Name:    name,
		Bytes:   2,
		TStates: 16,
		action: func(env *Environment) {
			r := &env.Reg
			hl := r.Get16(HL)
			de := r.Get16(DE)
			v := env.Mem.Peek(hl)
			env.Mem.Poke(de, v)
			r.Set16(HL, hl+delta)
			r.Set16(DE, de+delta)
			bc := r.Get16(BC) - 1
			r.Set16(BC, bc)
			n := v + r.data[A]
			r.data[F] = r.data[F]&(FlagC|FlagZ|FlagS) |
				bsel(bc != 0, FlagP, 0) |
				n&Flag3 | n<<4&Flag5
			if repeat && bc != 0 {
				r.Set16(PC, r.Get16(PC)-2)
				env.Cycles += 5
			}
		},
	}
}

// buildCpBlock covers CPI, CPD, CPIR and CPDR: compare A with (HL), HL
// steps, BC counts down. Carry is preserved; the repeat forms stop on a
// match or when BC runs out.
func buildCpBlock(name string, increment bool, repeat bool) Opcode {
	var delta uint16 = 1
	if !increment {
		delta = 0xFFFF
	}
	return Opcode{
		Name:    name,
		Bytes:   2,
		TStates: 16,
		action: func(env *Environment) {
			r := &env.Reg
			hl := r.Get16(HL)
			v := env.Mem.Peek(hl)
			result := r.data[A] - v
			half := bsel(r.data[A]&0x0F < v&0x0F, FlagH, 0)
			r.Set16(HL, hl+delta)
			bc := r.Get16(BC) - 1
			r.Set16(BC, bc)
			n := result - half>>4
			r.data[F] = r.data[F]&FlagC | FlagN | half |
				bsel(bc != 0, FlagP, 0) |
				result&FlagS |
				bsel(result == 0, FlagZ, 0) |
				n&Flag3 | n<<4&Flag5
			if repeat && bc != 0 && result != 0 {
				r.Set16(PC, r.Get16(PC)-2)
				env.Cycles += 5
			}
		},
	}
}
