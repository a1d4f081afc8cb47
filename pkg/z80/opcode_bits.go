package z80

import "fmt"

// Rotate, shift and single-bit builders for the CB page plus the four
// one-byte accumulator rotates. The eight CB rotate rows map onto the
// direction/mode matrix in operators.go.

var rotTable = [8]struct {
	name string
	dir  ShiftDir
	mode ShiftMode
}{
	{"RLC", Left, RotateCarry},
	{"RRC", Right, RotateCarry},
	{"RL", Left, Rotate},
	{"RR", Right, Rotate},
	{"SLA", Left, Arithmetic},
	{"SRA", Right, Arithmetic},
	{"SLL", Left, Logical},
	{"SRL", Right, Logical},
}

func buildRotR(y, z int) Opcode {
	row := rotTable[y]
	reg := tableR[z]
	cycles := 8
	if reg == IndirectHL {
		cycles = 15
	}
	return Opcode{
		Name:    row.name + " " + tableRName[z],
		Bytes:   2,
		TStates: cycles,
		action: func(env *Environment) {
			env.Set(reg, rotate(&env.Reg, env.Get(reg), row.dir, row.mode, false))
		},
	}
}

// buildRotA covers RLCA, RRCA, RLA and RRA, the fast accumulator forms
// that leave S, Z and P alone.
func buildRotA(y int) Opcode {
	row := rotTable[y]
	return Opcode{
		Name:    row.name + "A",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			r := &env.Reg
			r.data[A] = rotate(r, r.data[A], row.dir, row.mode, true)
		},
	}
}

func buildBitR(y, z int) Opcode {
	bit := uint8(y)
	reg := tableR[z]
	cycles := 8
	if reg == IndirectHL {
		cycles = 12
	}
	return Opcode{
		Name:    fmt.Sprintf("BIT %d, %s", y, tableRName[z]),
		Bytes:   2,
		TStates: cycles,
		action: func(env *Environment) {
			bitTest(&env.Reg, env.Get(reg), bit)
		},
	}
}

func buildSetR(y, z int) Opcode {
	mask := uint8(1) << uint(y)
	reg := tableR[z]
	cycles := 8
	if reg == IndirectHL {
		cycles = 15
	}
	return Opcode{
		Name:    fmt.Sprintf("SET %d, %s", y, tableRName[z]),
		Bytes:   2,
		TStates: cycles,
		action: func(env *Environment) {
			env.Set(reg, env.Get(reg)|mask)
		},
	}
}

func buildResR(y, z int) Opcode {
	mask := ^(uint8(1) << uint(y))
	reg := tableR[z]
	cycles := 8
	if reg == IndirectHL {
		cycles = 15
	}
	return Opcode{
		Name:    fmt.Sprintf("RES %d, %s", y, tableRName[z]),
		Bytes:   2,
		TStates: cycles,
		action: func(env *Environment) {
			env.Set(reg, env.Get(reg)&mask)
		},
	}
}

// RLD rotates the three BCD digits spread over A's low nibble and (HL)
// leftwards; RRD rotates them rightwards. A's high nibble is untouched.
func buildRld() Opcode {
	return Opcode{
		Name:    "RLD",
		Bytes:   2,
		TStates: 18,
		action: func(env *Environment) {
			r := &env.Reg
			address := r.Get16(HL)
			m := env.Mem.Peek(address)
			a := r.data[A]
			env.Mem.Poke(address, m<<4|a&0x0F)
			r.data[A] = a&0xF0 | m>>4
			r.data[F] = r.data[F]&FlagC | Sz53pTable[r.data[A]]
		},
	}
}

func buildRrd() Opcode {
	return Opcode{
		Name:    "RRD",
		Bytes:   2,
		TStates: 18,
		action: func(env *Environment) {
			r := &env.Reg
			address := r.Get16(HL)
			m := env.Mem.Peek(address)
			a := r.data[A]
			env.Mem.Poke(address, a<<4|m>>4)
			r.data[A] = a&0xF0 | m&0x0F
			r.data[F] = r.data[F]&FlagC | Sz53pTable[r.data[A]]
		},
	}
}
