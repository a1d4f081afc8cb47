package z80

import "testing"

// TestPairAliasing verifies 8- and 16-bit access hit the same storage for
// every composed pair.
func TestPairAliasing(t *testing.T) {
	var r Registers

	pairs := []struct {
		wide   Reg16
		hi, lo Reg8
	}{
		{BC, B, C},
		{DE, D, E},
		{HL, H, L},
		{AF, A, F},
		{IX, IXH, IXL},
		{IY, IYH, IYL},
	}
	for _, p := range pairs {
		r.Set16(p.wide, 0x1234)
		if r.Get8(p.hi) != 0x12 || r.Get8(p.lo) != 0x34 {
			t.Errorf("%s=1234: halves %02X %02X", p.wide, r.Get8(p.hi), r.Get8(p.lo))
		}
		r.Set8(p.hi, 0xAB)
		r.Set8(p.lo, 0xCD)
		if r.Get16(p.wide) != 0xABCD {
			t.Errorf("%s after half writes: %04X, want ABCD", p.wide, r.Get16(p.wide))
		}
	}

	r.Set16(SP, 0xFFFE)
	r.Set16(PC, 0x0100)
	if r.Get16(SP) != 0xFFFE || r.Get16(PC) != 0x0100 {
		t.Error("SP/PC storage broken")
	}
}

func TestIndirectHLPanics(t *testing.T) {
	var r Registers
	defer func() {
		if recover() == nil {
			t.Error("Get8(IndirectHL) should panic")
		}
	}()
	r.Get8(IndirectHL)
}

func TestFlagHelpers(t *testing.T) {
	var r Registers
	r.SetFlag(FlagC | FlagZ)
	if !r.Flag(FlagC) || !r.Flag(FlagZ) || r.Flag(FlagS) {
		t.Errorf("flags: F=%02X", r.Get8(F))
	}
	r.ClearFlag(FlagZ)
	if r.Flag(FlagZ) {
		t.Error("ClearFlag failed")
	}
	r.PutFlag(FlagS, true)
	r.PutFlag(FlagC, false)
	if !r.Flag(FlagS) || r.Flag(FlagC) {
		t.Errorf("PutFlag: F=%02X", r.Get8(F))
	}
}

// TestShadowRoundTrip: two swaps restore both banks exactly.
func TestShadowRoundTrip(t *testing.T) {
	var r Registers
	r.Set16(BC, 0x1111)
	r.Set16(DE, 0x2222)
	r.Set16(HL, 0x3333)
	r.Set16(AF, 0x4444)

	r.Exx()
	r.SwapAF()
	if r.Get16(BC) != 0 || r.Get16(AF) != 0 {
		t.Error("shadow bank should start zeroed")
	}
	r.Set16(BC, 0x5555)
	r.Exx()
	r.SwapAF()

	if r.Get16(BC) != 0x1111 || r.Get16(DE) != 0x2222 ||
		r.Get16(HL) != 0x3333 || r.Get16(AF) != 0x4444 {
		t.Error("main bank not restored after double swap")
	}
	r.Exx()
	if r.Get16(BC) != 0x5555 {
		t.Error("shadow write lost")
	}
}

func TestRegisterNames(t *testing.T) {
	if IndirectHL.String() != "(HL)" {
		t.Errorf("IndirectHL.String() = %q", IndirectHL.String())
	}
	if IX.String() != "IX" || A.String() != "A" {
		t.Error("register names broken")
	}
}
