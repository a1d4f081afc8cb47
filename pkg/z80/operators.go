package z80

// The operators below are the single definition of result-plus-flags for
// every opcode builder that needs them: each operation kind computes its
// flags in exactly one place. The flag forms follow the remogatto/z80
// lookup-table formulation; the tables live in flags.go.

func add8(r *Registers, a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((sum&0x88)>>1)
	v := uint8(sum)
	r.data[F] = bsel(sum&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[v]
	return v
}

func adc8(r *Registers, a, b uint8) uint8 {
	sum := uint16(a) + uint16(b) + uint16(r.data[F]&FlagC)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((sum&0x88)>>1)
	v := uint8(sum)
	r.data[F] = bsel(sum&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[v]
	return v
}

func sub8(r *Registers, a, b uint8) uint8 {
	diff := uint16(a) - uint16(b)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((diff&0x88)>>1)
	v := uint8(diff)
	r.data[F] = bsel(diff&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		Sz53Table[v]
	return v
}

func sbc8(r *Registers, a, b uint8) uint8 {
	diff := uint16(a) - uint16(b) - uint16(r.data[F]&FlagC)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((diff&0x88)>>1)
	v := uint8(diff)
	r.data[F] = bsel(diff&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		Sz53Table[v]
	return v
}

func and8(r *Registers, a, b uint8) uint8 {
	v := a & b
	r.data[F] = FlagH | Sz53pTable[v]
	return v
}

func or8(r *Registers, a, b uint8) uint8 {
	v := a | b
	r.data[F] = Sz53pTable[v]
	return v
}

func xor8(r *Registers, a, b uint8) uint8 {
	v := a ^ b
	r.data[F] = Sz53pTable[v]
	return v
}

// cp8 is the compare: subtraction flags without a result. The bit-echo
// flags come from the operand, not the difference.
func cp8(r *Registers, a, b uint8) {
	diff := uint16(a) - uint16(b)
	lookup := ((a & 0x88) >> 3) | ((b & 0x88) >> 2) | uint8((diff&0x88)>>1)
	r.data[F] = bsel(diff&0x100 != 0, FlagC, bsel(diff != 0, 0, FlagZ)) |
		FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		(b & (Flag3 | Flag5)) |
		uint8(diff&uint16(FlagS))
}

// inc8 and dec8 never touch Carry; Overflow fires only on the 0x7F/0x80
// boundary and Half-carry on the low-nibble wrap.
func inc8(r *Registers, v uint8) uint8 {
	v++
	r.data[F] = r.data[F]&FlagC |
		bsel(v == 0x80, FlagV, 0) |
		bsel(v&0x0F != 0, 0, FlagH) |
		Sz53Table[v]
	return v
}

func dec8(r *Registers, v uint8) uint8 {
	r.data[F] = r.data[F]&FlagC | bsel(v&0x0F != 0, 0, FlagH) | FlagN
	v--
	r.data[F] |= bsel(v == 0x7F, FlagV, 0) | Sz53Table[v]
	return v
}

// daa applies the BCD correction to A using the N, H and C context left by
// the previous arithmetic instruction. See TUZD section 4.7 for the table
// this reproduces.
func daa(r *Registers) {
	a := r.data[A]
	var add, carry uint8
	carry = r.data[F] & FlagC
	if r.data[F]&FlagH != 0 || a&0x0F > 9 {
		add = 6
	}
	if carry != 0 || a > 0x99 {
		add |= 0x60
	}
	if a > 0x99 {
		carry = FlagC
	}
	if r.data[F]&FlagN != 0 {
		r.data[A] = sub8(r, a, add)
	} else {
		r.data[A] = add8(r, a, add)
	}
	r.data[F] = r.data[F]&^(FlagC|FlagP) | carry | ParityTable[r.data[A]]
}

// add16 implements the ADD HL family: only C (bit 15 carry), H (bit 11
// carry) and N are live; S, Z and P/V are preserved. The asymmetry with
// adc16/sbc16 is the chip's, not an oversight.
func add16(r *Registers, a, b uint16) uint16 {
	result := uint32(a) + uint32(b)
	half := (a & 0x0FFF) + (b & 0x0FFF)
	r.data[F] = r.data[F]&(FlagS|FlagZ|FlagP) |
		bsel(half&0x1000 != 0, FlagH, 0) |
		bsel(result&0x10000 != 0, FlagC, 0) |
		uint8(result>>8)&(Flag3|Flag5)
	return uint16(result)
}

// adc16 and sbc16 compute the full flag set, indexing the half-carry and
// overflow tables from bits 11 and 15.
func adc16(r *Registers, a, b uint16) uint16 {
	result := uint32(a) + uint32(b) + uint32(r.data[F]&FlagC)
	lookup := uint8((uint32(a)&0x8800)>>11 | (uint32(b)&0x8800)>>10 | (result&0x8800)>>9)
	v := uint16(result)
	r.data[F] = bsel(result&0x10000 != 0, FlagC, 0) |
		OverflowAddTable[lookup>>4] |
		uint8(v>>8)&(Flag3|Flag5|FlagS) |
		HalfcarryAddTable[lookup&0x07] |
		bsel(v != 0, 0, FlagZ)
	return v
}

func sbc16(r *Registers, a, b uint16) uint16 {
	result := uint32(a) - uint32(b) - uint32(r.data[F]&FlagC)
	lookup := uint8((uint32(a)&0x8800)>>11 | (uint32(b)&0x8800)>>10 | (result&0x8800)>>9)
	v := uint16(result)
	r.data[F] = bsel(result&0x10000 != 0, FlagC, 0) |
		FlagN |
		OverflowSubTable[lookup>>4] |
		uint8(v>>8)&(Flag3|Flag5|FlagS) |
		HalfcarrySubTable[lookup&0x07] |
		bsel(v != 0, 0, FlagZ)
	return v
}

// ShiftDir and ShiftMode span the rotate/shift matrix: direction crossed
// with {Arithmetic, Logical, Rotate (through carry), RotateCarry
// (circular)}. Carry out is always the bit shifted off the far end.
type ShiftDir uint8

const (
	Left ShiftDir = iota
	Right
)

type ShiftMode uint8

const (
	Arithmetic ShiftMode = iota
	Logical
	Rotate
	RotateCarry
)

// rotate performs one step of the matrix. The fast form (the one-byte
// accumulator rotates) only touches C, H, N and the bit echoes, preserving
// S, Z and P; the full CB forms recompute S/Z/5/3/P as well.
func rotate(r *Registers, v uint8, dir ShiftDir, mode ShiftMode, fast bool) uint8 {
	var carry bool
	switch dir {
	case Left:
		upper := v&0x80 != 0
		v <<= 1
		var lower bool
		switch mode {
		case Arithmetic:
			lower = false // SLA: bit 0 always 0
		case Logical:
			lower = true // SLL: bit 0 always 1
		case Rotate:
			lower = r.data[F]&FlagC != 0
		case RotateCarry:
			lower = upper
		}
		if lower {
			v |= 0x01
		}
		carry = upper
	case Right:
		upper := v&0x80 != 0
		lower := v&0x01 != 0
		v >>= 1
		var top bool
		switch mode {
		case Arithmetic:
			top = upper // SRA: sign extends
		case Logical:
			top = false // SRL: bit 7 always 0
		case Rotate:
			top = r.data[F]&FlagC != 0
		case RotateCarry:
			top = lower
		}
		if top {
			v |= 0x80
		}
		carry = lower
	}
	if fast {
		r.data[F] = r.data[F]&(FlagS|FlagZ|FlagP) |
			v&(Flag3|Flag5) |
			bsel(carry, FlagC, 0)
	} else {
		r.data[F] = bsel(carry, FlagC, 0) | Sz53pTable[v]
	}
	return v
}

// bitTest implements BIT: the value is not modified, only flags change.
// A clear bit sets both Z and P; testing bit 7 of a negative value sets S.
func bitTest(r *Registers, v uint8, bit uint8) {
	r.data[F] = r.data[F]&FlagC | FlagH | v&(Flag3|Flag5)
	if v&(1<<bit) == 0 {
		r.data[F] |= FlagP | FlagZ
	}
	if bit == 7 && v&0x80 != 0 {
		r.data[F] |= FlagS
	}
}

// bsel returns a if cond is true, else b. Branchless flag selection.
func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}
