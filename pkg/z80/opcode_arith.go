package z80

// Arithmetic and logic builders. The eight-entry ALU row is indexed by the
// decoded y field; every entry delegates to the shared operators so each
// operation's flag logic exists exactly once.

var aluTable = [8]struct {
	name  string
	withA bool // mnemonic spells the accumulator operand
	apply func(r *Registers, value uint8)
}{
	{"ADD", true, func(r *Registers, v uint8) { r.data[A] = add8(r, r.data[A], v) }},
	{"ADC", true, func(r *Registers, v uint8) { r.data[A] = adc8(r, r.data[A], v) }},
	{"SUB", false, func(r *Registers, v uint8) { r.data[A] = sub8(r, r.data[A], v) }},
	{"SBC", true, func(r *Registers, v uint8) { r.data[A] = sbc8(r, r.data[A], v) }},
	{"AND", false, func(r *Registers, v uint8) { r.data[A] = and8(r, r.data[A], v) }},
	{"XOR", false, func(r *Registers, v uint8) { r.data[A] = xor8(r, r.data[A], v) }},
	{"OR", false, func(r *Registers, v uint8) { r.data[A] = or8(r, r.data[A], v) }},
	{"CP", false, func(r *Registers, v uint8) { cp8(r, r.data[A], v) }},
}

func aluName(y int, operand string) string {
	if aluTable[y].withA {
		return aluTable[y].name + " A, " + operand
	}
	return aluTable[y].name + " " + operand
}

func buildAluR(y, z int) Opcode {
	apply := aluTable[y].apply
	reg := tableR[z]
	cycles := 4
	if reg == IndirectHL {
		cycles = 7
	}
	return Opcode{
		Name:    aluName(y, tableRName[z]),
		Bytes:   1,
		TStates: cycles,
		action: func(env *Environment) {
			env.LoadDisplacement(reg)
			apply(&env.Reg, env.Get(reg))
		},
	}
}

func buildAluN(y int) Opcode {
	apply := aluTable[y].apply
	return Opcode{
		Name:    aluName(y, "X"),
		Bytes:   2,
		TStates: 7,
		action: func(env *Environment) {
			apply(&env.Reg, env.AdvancePC())
		},
	}
}

func buildIncR(y int) Opcode {
	reg := tableR[y]
	cycles := 4
	if reg == IndirectHL {
		cycles = 11
	}
	return Opcode{
		Name:    "INC " + tableRName[y],
		Bytes:   1,
		TStates: cycles,
		action: func(env *Environment) {
			env.LoadDisplacement(reg)
			env.Set(reg, inc8(&env.Reg, env.Get(reg)))
		},
	}
}

func buildDecR(y int) Opcode {
	reg := tableR[y]
	cycles := 4
	if reg == IndirectHL {
		cycles = 11
	}
	return Opcode{
		Name:    "DEC " + tableRName[y],
		Bytes:   1,
		TStates: cycles,
		action: func(env *Environment) {
			env.LoadDisplacement(reg)
			env.Set(reg, dec8(&env.Reg, env.Get(reg)))
		},
	}
}

// 16-bit INC/DEC never touches flags, by design of the chip.
func buildIncDecRR(p int, inc bool) Opcode {
	rr := tableRP[p]
	delta := uint16(1)
	mnemonic := "INC"
	if !inc {
		delta = 0xFFFF
		mnemonic = "DEC"
	}
	return Opcode{
		Name:    mnemonic + " " + tableRPName[p],
		Bytes:   1,
		TStates: 6,
		action: func(env *Environment) {
			env.Set16(rr, env.Get16(rr)+delta)
		},
	}
}

func buildAddHlRR(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "ADD HL, " + tableRPName[p],
		Bytes:   1,
		TStates: 11,
		action: func(env *Environment) {
			aa := env.Get16(HL)
			bb := env.Get16(rr)
			env.Set16(HL, add16(&env.Reg, aa, bb))
		},
	}
}

func buildAdcHlRR(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "ADC HL, " + tableRPName[p],
		Bytes:   2,
		TStates: 15,
		action: func(env *Environment) {
			aa := env.Reg.Get16(HL)
			bb := env.Reg.Get16(rr)
			env.Reg.Set16(HL, adc16(&env.Reg, aa, bb))
		},
	}
}

func buildSbcHlRR(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "SBC HL, " + tableRPName[p],
		Bytes:   2,
		TStates: 15,
		action: func(env *Environment) {
			aa := env.Reg.Get16(HL)
			bb := env.Reg.Get16(rr)
			env.Reg.Set16(HL, sbc16(&env.Reg, aa, bb))
		},
	}
}

func buildDaa() Opcode {
	return Opcode{
		Name:    "DAA",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			daa(&env.Reg)
		},
	}
}

func buildCpl() Opcode {
	return Opcode{
		Name:    "CPL",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			r := &env.Reg
			r.data[A] ^= 0xFF
			r.data[F] = r.data[F]&(FlagC|FlagP|FlagZ|FlagS) |
				r.data[A]&(Flag3|Flag5) |
				FlagN | FlagH
		},
	}
}

func buildScf() Opcode {
	return Opcode{
		Name:    "SCF",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			r := &env.Reg
			r.data[F] = r.data[F]&(FlagP|FlagZ|FlagS) |
				r.data[A]&(Flag3|Flag5) |
				FlagC
		},
	}
}

// CCF moves the old carry into H and complements C.
func buildCcf() Opcode {
	return Opcode{
		Name:    "CCF",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			r := &env.Reg
			oldC := r.data[F] & FlagC
			r.data[F] = r.data[F]&(FlagP|FlagZ|FlagS) | r.data[A]&(Flag3|Flag5)
			if oldC != 0 {
				r.data[F] |= FlagH
			} else {
				r.data[F] |= FlagC
			}
		},
	}
}

func buildNeg() Opcode {
	return Opcode{
		Name:    "NEG",
		Bytes:   2,
		TStates: 8,
		action: func(env *Environment) {
			a := env.Reg.Get8(A)
			env.Reg.Set8(A, sub8(&env.Reg, 0, a))
		},
	}
}
