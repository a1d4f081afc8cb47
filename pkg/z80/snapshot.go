package z80

// Snapshot is the full architectural state of one CPU in an exportable
// form, suitable for gob or any other encoder. Memory is snapshotted
// separately by whoever owns it.
type Snapshot struct {
	A, F, B, C, D, E, H, L                 uint8
	ShadowA, ShadowF                       uint8
	ShadowB, ShadowC, ShadowD, ShadowE     uint8
	ShadowH, ShadowL                       uint8
	IX, IY, SP, PC                         uint16
	I, R                                   uint8
	IFF1, IFF2                             bool
	IM                                     uint8
	Cycles                                 uint64
	Halted                                 bool
}

// Snapshot captures the current architectural state.
func (c *CPU) Snapshot() Snapshot {
	r := &c.env.Reg
	return Snapshot{
		A: r.data[A], F: r.data[F],
		B: r.data[B], C: r.data[C],
		D: r.data[D], E: r.data[E],
		H: r.data[H], L: r.data[L],
		ShadowA: r.shadow[A], ShadowF: r.shadow[F],
		ShadowB: r.shadow[B], ShadowC: r.shadow[C],
		ShadowD: r.shadow[D], ShadowE: r.shadow[E],
		ShadowH: r.shadow[H], ShadowL: r.shadow[L],
		IX: r.Get16(IX), IY: r.Get16(IY),
		SP: r.sp, PC: r.pc,
		I: r.data[I], R: r.data[R],
		IFF1: r.IFF1, IFF2: r.IFF2, IM: r.IM,
		Cycles: c.env.Cycles,
		Halted: c.env.Halted,
	}
}

// Restore overwrites the CPU state with a previously captured snapshot.
func (c *CPU) Restore(s Snapshot) {
	r := &c.env.Reg
	r.data[A], r.data[F] = s.A, s.F
	r.data[B], r.data[C] = s.B, s.C
	r.data[D], r.data[E] = s.D, s.E
	r.data[H], r.data[L] = s.H, s.L
	r.shadow[A], r.shadow[F] = s.ShadowA, s.ShadowF
	r.shadow[B], r.shadow[C] = s.ShadowB, s.ShadowC
	r.shadow[D], r.shadow[E] = s.ShadowD, s.ShadowE
	r.shadow[H], r.shadow[L] = s.ShadowH, s.ShadowL
	r.Set16(IX, s.IX)
	r.Set16(IY, s.IY)
	r.sp, r.pc = s.SP, s.PC
	r.data[I], r.data[R] = s.I, s.R
	r.IFF1, r.IFF2, r.IM = s.IFF1, s.IFF2, s.IM
	c.env.Cycles = s.Cycles
	c.env.Halted = s.Halted
	c.env.clearIndex()
}
