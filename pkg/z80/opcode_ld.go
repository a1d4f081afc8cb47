package z80

// Load, stack and exchange builders. Each is a pure factory: given decoded
// selector indices it returns a self-contained Opcode whose action closes
// over them. None of these touch flags except where the chip does
// (LD A,I / LD A,R).

func buildLdRR(y, z int) Opcode {
	dst, src := tableR[y], tableR[z]
	cycles := 4
	if dst == IndirectHL || src == IndirectHL {
		cycles = 7
	}
	return Opcode{
		Name:    "LD " + tableRName[y] + ", " + tableRName[z],
		Bytes:   1,
		TStates: cycles,
		action: func(env *Environment) {
			env.LoadDisplacement(dst)
			env.LoadDisplacement(src)
			env.Set(dst, env.Get(src))
		},
	}
}

func buildLdRN(y int) Opcode {
	reg := tableR[y]
	cycles := 7
	if reg == IndirectHL {
		cycles = 10
	}
	return Opcode{
		Name:    "LD " + tableRName[y] + ", X",
		Bytes:   2,
		TStates: cycles,
		action: func(env *Environment) {
			// Displacement precedes the immediate in LD (IX+d), n, and
			// their fetches share machine cycles: the form costs 19 in
			// total, so part of the flat displacement charge is returned.
			if env.LoadDisplacement(reg) {
				env.Cycles -= 3
			}
			env.Set(reg, env.AdvancePC())
		},
	}
}

func buildLdRRNN(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "LD " + tableRPName[p] + ", XX",
		Bytes:   3,
		TStates: 10,
		action: func(env *Environment) {
			env.Set16(rr, env.AdvanceImmediate16())
		},
	}
}

// buildLdAIndRR covers LD A, (BC) and LD A, (DE).
func buildLdAIndRR(rr Reg16) Opcode {
	return Opcode{
		Name:    "LD A, (" + rr.String() + ")",
		Bytes:   1,
		TStates: 7,
		action: func(env *Environment) {
			env.Reg.Set8(A, env.Mem.Peek(env.Reg.Get16(rr)))
		},
	}
}

func buildLdIndRRA(rr Reg16) Opcode {
	return Opcode{
		Name:    "LD (" + rr.String() + "), A",
		Bytes:   1,
		TStates: 7,
		action: func(env *Environment) {
			env.Mem.Poke(env.Reg.Get16(rr), env.Reg.Get8(A))
		},
	}
}

func buildLdAAddr() Opcode {
	return Opcode{
		Name:    "LD A, (XX)",
		Bytes:   3,
		TStates: 13,
		action: func(env *Environment) {
			env.Reg.Set8(A, env.Mem.Peek(env.AdvanceImmediate16()))
		},
	}
}

func buildLdAddrA() Opcode {
	return Opcode{
		Name:    "LD (XX), A",
		Bytes:   3,
		TStates: 13,
		action: func(env *Environment) {
			env.Mem.Poke(env.AdvanceImmediate16(), env.Reg.Get8(A))
		},
	}
}

func buildLdHLAddr() Opcode {
	return Opcode{
		Name:    "LD HL, (XX)",
		Bytes:   3,
		TStates: 16,
		action: func(env *Environment) {
			env.Set16(HL, env.PeekWord(env.AdvanceImmediate16()))
		},
	}
}

func buildLdAddrHL() Opcode {
	return Opcode{
		Name:    "LD (XX), HL",
		Bytes:   3,
		TStates: 16,
		action: func(env *Environment) {
			env.PokeWord(env.AdvanceImmediate16(), env.Get16(HL))
		},
	}
}

// ED-prefixed wide loads; the index prefix never combines with ED, so these
// go straight to the register file.
func buildLdRRAddrED(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "LD " + tableRPName[p] + ", (XX)",
		Bytes:   4,
		TStates: 20,
		action: func(env *Environment) {
			env.Reg.Set16(rr, env.PeekWord(env.AdvanceImmediate16()))
		},
	}
}

func buildLdAddrRRED(p int) Opcode {
	rr := tableRP[p]
	return Opcode{
		Name:    "LD (XX), " + tableRPName[p],
		Bytes:   4,
		TStates: 20,
		action: func(env *Environment) {
			env.PokeWord(env.AdvanceImmediate16(), env.Reg.Get16(rr))
		},
	}
}

func buildLdSPHL() Opcode {
	return Opcode{
		Name:    "LD SP, HL",
		Bytes:   1,
		TStates: 6,
		action: func(env *Environment) {
			env.Reg.Set16(SP, env.Get16(HL))
		},
	}
}

func buildPush(p int) Opcode {
	rr := tableRP2[p]
	return Opcode{
		Name:    "PUSH " + tableRP2Name[p],
		Bytes:   1,
		TStates: 11,
		action: func(env *Environment) {
			env.Push(env.Get16(rr))
		},
	}
}

func buildPop(p int) Opcode {
	rr := tableRP2[p]
	return Opcode{
		Name:    "POP " + tableRP2Name[p],
		Bytes:   1,
		TStates: 10,
		action: func(env *Environment) {
			env.Set16(rr, env.Pop())
		},
	}
}

// EX DE, HL ignores the index prefix on real hardware, so it bypasses the
// environment's HL translation.
func buildExDeHl() Opcode {
	return Opcode{
		Name:    "EX DE, HL",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			de := env.Reg.Get16(DE)
			env.Reg.Set16(DE, env.Reg.Get16(HL))
			env.Reg.Set16(HL, de)
		},
	}
}

func buildExAfAf() Opcode {
	return Opcode{
		Name:    "EX AF, AF'",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Reg.SwapAF()
		},
	}
}

func buildExx() Opcode {
	return Opcode{
		Name:    "EXX",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Reg.Exx()
		},
	}
}

func buildExSpHl() Opcode {
	return Opcode{
		Name:    "EX (SP), HL",
		Bytes:   1,
		TStates: 19,
		action: func(env *Environment) {
			sp := env.Reg.Get16(SP)
			top := env.PeekWord(sp)
			env.PokeWord(sp, env.Get16(HL))
			env.Set16(HL, top)
		},
	}
}

// buildLdAIR covers LD A, I and LD A, R: S/Z/5/3 from the value, H and N
// cleared, P loaded from IFF2, C preserved.
func buildLdAIR(src Reg8) Opcode {
	return Opcode{
		Name:    "LD A, " + src.String(),
		Bytes:   2,
		TStates: 9,
		action: func(env *Environment) {
			v := env.Reg.Get8(src)
			env.Reg.Set8(A, v)
			env.Reg.data[F] = env.Reg.data[F]&FlagC |
				Sz53Table[v] |
				bsel(env.Reg.IFF2, FlagP, 0)
		},
	}
}

func buildLdIRA(dst Reg8) Opcode {
	return Opcode{
		Name:    "LD " + dst.String() + ", A",
		Bytes:   2,
		TStates: 9,
		action: func(env *Environment) {
			env.Reg.Set8(dst, env.Reg.Get8(A))
		},
	}
}
