package z80

// Opcode byte decoding per the standard x/y/z/p/q bit-field scheme: x is
// bits 7-6, y bits 5-3, z bits 2-0, with y split further into p (bits 5-4)
// and q (bit 3). Each field indexes one of the selector tables below and
// the dispatch tables are assembled once at init from the build* factories.

// tableR maps the 3-bit register field; slot 6 is the (HL) indirection.
var tableR = [8]Reg8{B, C, D, E, H, L, IndirectHL, A}

var tableRName = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// tableRP is the register-pair row with SP; tableRP2 swaps SP for AF and
// serves PUSH/POP.
var (
	tableRP      = [4]Reg16{BC, DE, HL, SP}
	tableRPName  = [4]string{"BC", "DE", "HL", "SP"}
	tableRP2     = [4]Reg16{BC, DE, HL, AF}
	tableRP2Name = [4]string{"BC", "DE", "HL", "AF"}
)

// Interrupt mode by the y field of ED IM; the duplicate rows are the chip's.
var imModes = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}

type decoding struct {
	x, y, z, p, q int
}

func parts(code uint8) decoding {
	return decoding{
		x: int(code >> 6),
		y: int(code >> 3 & 0x07),
		z: int(code & 0x07),
		p: int(code >> 4 & 0x03),
		q: int(code >> 3 & 0x01),
	}
}

// Prefix bytes in the base table; the stepper intercepts them before
// dispatch, so their slots stay empty.
const (
	prefixCB = 0xCB
	prefixED = 0xED
	prefixDD = 0xDD
	prefixFD = 0xFD
)

var (
	opcodesBase [256]*Opcode
	opcodesCB   [256]*Opcode
	opcodesED   [256]*Opcode
)

func init() {
	for code := 0; code < 256; code++ {
		if op := decodeBase(uint8(code)); op != nil {
			opcodesBase[code] = op
		}
		op := decodeCB(uint8(code))
		opcodesCB[code] = &op
		if op := decodeED(uint8(code)); op != nil {
			opcodesED[code] = op
		}
	}
}

func install(op Opcode) *Opcode {
	return &op
}

func decodeBase(code uint8) *Opcode {
	d := parts(code)
	switch d.x {
	case 0:
		switch d.z {
		case 0:
			switch d.y {
			case 0:
				return install(buildNop())
			case 1:
				return install(buildExAfAf())
			case 2:
				return install(buildDjnz())
			case 3:
				return install(buildJrD())
			default:
				return install(buildJrCC(d.y - 4))
			}
		case 1:
			if d.q == 0 {
				return install(buildLdRRNN(d.p))
			}
			return install(buildAddHlRR(d.p))
		case 2:
			switch {
			case d.q == 0 && d.p == 0:
				return install(buildLdIndRRA(BC))
			case d.q == 0 && d.p == 1:
				return install(buildLdIndRRA(DE))
			case d.q == 0 && d.p == 2:
				return install(buildLdAddrHL())
			case d.q == 0 && d.p == 3:
				return install(buildLdAddrA())
			case d.p == 0:
				return install(buildLdAIndRR(BC))
			case d.p == 1:
				return install(buildLdAIndRR(DE))
			case d.p == 2:
				return install(buildLdHLAddr())
			default:
				return install(buildLdAAddr())
			}
		case 3:
			return install(buildIncDecRR(d.p, d.q == 0))
		case 4:
			return install(buildIncR(d.y))
		case 5:
			return install(buildDecR(d.y))
		case 6:
			return install(buildLdRN(d.y))
		case 7:
			switch d.y {
			case 0, 1, 2, 3:
				return install(buildRotA(d.y))
			case 4:
				return install(buildDaa())
			case 5:
				return install(buildCpl())
			case 6:
				return install(buildScf())
			default:
				return install(buildCcf())
			}
		}
	case 1:
		if code == 0x76 {
			return install(buildHalt())
		}
		return install(buildLdRR(d.y, d.z))
	case 2:
		return install(buildAluR(d.y, d.z))
	case 3:
		switch d.z {
		case 0:
			return install(buildRetCC(d.y))
		case 1:
			if d.q == 0 {
				return install(buildPop(d.p))
			}
			switch d.p {
			case 0:
				return install(buildRet())
			case 1:
				return install(buildExx())
			case 2:
				return install(buildJpHL())
			default:
				return install(buildLdSPHL())
			}
		case 2:
			return install(buildJpCC(d.y))
		case 3:
			switch d.y {
			case 0:
				return install(buildJpNN())
			case 1:
				return nil // CB prefix
			case 2:
				return install(buildOutNA())
			case 3:
				return install(buildInAN())
			case 4:
				return install(buildExSpHl())
			case 5:
				return install(buildExDeHl())
			case 6:
				return install(buildDi())
			default:
				return install(buildEi())
			}
		case 4:
			return install(buildCallCC(d.y))
		case 5:
			if d.q == 0 {
				return install(buildPush(d.p))
			}
			if d.p == 0 {
				return install(buildCallNN())
			}
			return nil // DD, ED, FD prefixes
		case 6:
			return install(buildAluN(d.y))
		case 7:
			return install(buildRst(d.y))
		}
	}
	return nil
}

// The CB page is dense: every byte decodes.
func decodeCB(code uint8) Opcode {
	d := parts(code)
	switch d.x {
	case 0:
		return buildRotR(d.y, d.z)
	case 1:
		return buildBitR(d.y, d.z)
	case 2:
		return buildResR(d.y, d.z)
	default:
		return buildSetR(d.y, d.z)
	}
}

// The ED page is sparse; empty slots surface as decode faults from the
// stepper rather than silently acting as NOP.
func decodeED(code uint8) *Opcode {
	d := parts(code)
	switch d.x {
	case 1:
		switch d.z {
		case 0:
			return install(buildInRC(d.y))
		case 1:
			return install(buildOutCR(d.y))
		case 2:
			if d.q == 0 {
				return install(buildSbcHlRR(d.p))
			}
			return install(buildAdcHlRR(d.p))
		case 3:
			if d.q == 0 {
				return install(buildLdAddrRRED(d.p))
			}
			return install(buildLdRRAddrED(d.p))
		case 4:
			return install(buildNeg())
		case 5:
			if d.y == 1 {
				return install(buildRetn("RETI"))
			}
			return install(buildRetn("RETN"))
		case 6:
			return install(buildIm(imModes[d.y]))
		case 7:
			switch d.y {
			case 0:
				return install(buildLdIRA(I))
			case 1:
				return install(buildLdIRA(R))
			case 2:
				return install(buildLdAIR(I))
			case 3:
				return install(buildLdAIR(R))
			case 4:
				return install(buildRrd())
			case 5:
				return install(buildRld())
			default:
				return install(buildNopED())
			}
		}
	case 2:
		if d.y < 4 {
			return nil
		}
		increment := d.y == 4 || d.y == 6
		repeat := d.y >= 6
		switch d.z {
		case 0:
			names := [4]string{"LDI", "LDD", "LDIR", "LDDR"}
			return install(buildLdBlock(names[d.y-4], increment, repeat))
		case 1:
			names := [4]string{"CPI", "CPD", "CPIR", "CPDR"}
			return install(buildCpBlock(names[d.y-4], increment, repeat))
		}
	}
	return nil
}

// BaseOpcode returns the unprefixed decoding of code, or nil for the four
// prefix bytes.
func BaseOpcode(code uint8) *Opcode { return opcodesBase[code] }

// CBOpcode returns the CB-page decoding of code; the page is total.
func CBOpcode(code uint8) *Opcode { return opcodesCB[code] }

// EDOpcode returns the ED-page decoding of code, or nil where the page has
// no documented instruction.
func EDOpcode(code uint8) *Opcode { return opcodesED[code] }
