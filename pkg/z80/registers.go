package z80

// Reg8 selects one 8-bit operand slot. IndirectHL is the pseudo-register
// meaning "the byte addressed by HL" (or IX+d/IY+d under an index prefix);
// it has no backing storage and must be resolved through the Environment,
// never read or written as a plain register.
type Reg8 uint8

const (
	B Reg8 = iota
	C
	D
	E
	H
	L
	A
	F
	IXH
	IXL
	IYH
	IYL
	I
	R
	IndirectHL

	reg8Count = IndirectHL // stored registers only
)

var reg8Names = [...]string{
	"B", "C", "D", "E", "H", "L", "A", "F",
	"IXH", "IXL", "IYH", "IYL", "I", "R", "(HL)",
}

func (r Reg8) String() string {
	if int(r) < len(reg8Names) {
		return reg8Names[r]
	}
	return "?"
}

// Reg16 selects one 16-bit register. BC/DE/HL/AF/IX/IY are views over their
// 8-bit halves; SP and PC are stored wide.
type Reg16 uint8

const (
	BC Reg16 = iota
	DE
	HL
	AF
	SP
	PC
	IX
	IY
)

var reg16Names = [...]string{"BC", "DE", "HL", "AF", "SP", "PC", "IX", "IY"}

func (r Reg16) String() string {
	if int(r) < len(reg16Names) {
		return reg16Names[r]
	}
	return "?"
}

// Registers is the Z80 register file: main set, shadow set, index registers,
// SP/PC and the interrupt scaffolding. The 16-bit pairs are composed from
// the stored 8-bit halves, so 8- and 16-bit access alias the same storage.
type Registers struct {
	data   [reg8Count]uint8
	shadow [8]uint8 // B..L, A, F (same indices as data)

	sp, pc uint16

	IFF1, IFF2 bool
	IM         uint8
}

// Get8 reads one stored 8-bit register. The (HL) pseudo-register is not
// storage; resolving it here is a programming error.
func (r *Registers) Get8(reg Reg8) uint8 {
	if reg >= reg8Count {
		panic("z80: (HL) pseudo-register accessed as plain register")
	}
	return r.data[reg]
}

func (r *Registers) Set8(reg Reg8, value uint8) {
	if reg >= reg8Count {
		panic("z80: (HL) pseudo-register accessed as plain register")
	}
	r.data[reg] = value
}

func (r *Registers) Get16(reg Reg16) uint16 {
	switch reg {
	case BC:
		return uint16(r.data[B])<<8 | uint16(r.data[C])
	case DE:
		return uint16(r.data[D])<<8 | uint16(r.data[E])
	case HL:
		return uint16(r.data[H])<<8 | uint16(r.data[L])
	case AF:
		return uint16(r.data[A])<<8 | uint16(r.data[F])
	case SP:
		return r.sp
	case PC:
		return r.pc
	case IX:
		return uint16(r.data[IXH])<<8 | uint16(r.data[IXL])
	case IY:
		return uint16(r.data[IYH])<<8 | uint16(r.data[IYL])
	}
	return 0
}

func (r *Registers) Set16(reg Reg16, value uint16) {
	hi, lo := uint8(value>>8), uint8(value)
	switch reg {
	case BC:
		r.data[B], r.data[C] = hi, lo
	case DE:
		r.data[D], r.data[E] = hi, lo
	case HL:
		r.data[H], r.data[L] = hi, lo
	case AF:
		r.data[A], r.data[F] = hi, lo
	case SP:
		r.sp = value
	case PC:
		r.pc = value
	case IX:
		r.data[IXH], r.data[IXL] = hi, lo
	case IY:
		r.data[IYH], r.data[IYL] = hi, lo
	}
}

// Flag reports whether the given flag bit is set.
func (r *Registers) Flag(flag uint8) bool {
	return r.data[F]&flag != 0
}

func (r *Registers) SetFlag(flag uint8) {
	r.data[F] |= flag
}

func (r *Registers) ClearFlag(flag uint8) {
	r.data[F] &^= flag
}

// PutFlag sets or clears a flag from a boolean, keeping flag computation
// branch-free at call sites.
func (r *Registers) PutFlag(flag uint8, on bool) {
	if on {
		r.data[F] |= flag
	} else {
		r.data[F] &^= flag
	}
}

// UpdateSZ53 refreshes Sign, Zero and the two bit-echo flags from a result
// value, leaving H, P, N and C alone.
func (r *Registers) UpdateSZ53(value uint8) {
	r.data[F] = r.data[F]&^(FlagS|FlagZ|Flag5|Flag3) | Sz53Table[value]
}

// UpdateParity refreshes P from the population parity of value.
func (r *Registers) UpdateParity(value uint8) {
	r.data[F] = r.data[F]&^FlagP | ParityTable[value]
}

// SwapAF exchanges AF with the shadow set (EX AF, AF').
func (r *Registers) SwapAF() {
	r.data[A], r.shadow[A] = r.shadow[A], r.data[A]
	r.data[F], r.shadow[F] = r.shadow[F], r.data[F]
}

// Exx exchanges BC, DE and HL with the shadow set.
func (r *Registers) Exx() {
	for _, reg := range [...]Reg8{B, C, D, E, H, L} {
		r.data[reg], r.shadow[reg] = r.shadow[reg], r.data[reg]
	}
}
