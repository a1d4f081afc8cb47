package z80

// Opcode is one decoded instruction: a display name for diagnostics, the
// encoded byte length, the base T-state cost and the action run against the
// execution context. Opcodes are built once at process start by the
// build* template factories and never mutated afterwards, so the dispatch
// tables are safe to share across concurrent CPU instances.
//
// Immediate operands render in the name as "X" (8-bit) or "XX" (16-bit);
// the concrete value is only known at execution time.
type Opcode struct {
	Name    string
	Bytes   int
	TStates int
	action  func(env *Environment)
}

// Execute runs the action and then charges the base cycle cost, so no
// builder can forget the charge. Conditional branches and displacement
// loads add their documented extra cost inside the action.
func (o *Opcode) Execute(env *Environment) {
	o.action(env)
	env.Cycles += uint64(o.TStates)
}

func buildNop() Opcode {
	return Opcode{
		Name:    "NOP",
		Bytes:   1,
		TStates: 4,
		action:  func(env *Environment) {},
	}
}

// buildNopED covers the ED 77/7F slots, which the chip executes as
// two-byte no-ops.
func buildNopED() Opcode {
	return Opcode{
		Name:    "NOP",
		Bytes:   2,
		TStates: 8,
		action:  func(env *Environment) {},
	}
}

func buildHalt() Opcode {
	return Opcode{
		Name:    "HALT",
		Bytes:   1,
		TStates: 4,
		action: func(env *Environment) {
			env.Halted = true
		},
	}
}
