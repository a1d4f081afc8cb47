package z80

import (
	"errors"
	"fmt"
)

// ErrHalted is returned by Step once the CPU has executed HALT; further
// steps make no progress until Reset.
var ErrHalted = errors.New("z80: cpu halted")

// ErrCycleLimit is returned by Run when the cycle budget runs out before
// the CPU halts.
var ErrCycleLimit = errors.New("z80: cycle limit reached")

// ErrPrefixLoop is returned by Step when a DD/FD prefix chain wraps the
// whole address space without reaching an opcode: the instruction can
// never complete, and without the bound the host could not regain control
// between steps.
var ErrPrefixLoop = errors.New("z80: unterminated index-prefix chain")

// UnimplementedOpcodeError reports a fetch of an opcode with no decoding,
// pinned to the address it was fetched from. Prefix is 0 for the base page.
type UnimplementedOpcodeError struct {
	Prefix uint8
	Code   uint8
	PC     uint16
}

func (e *UnimplementedOpcodeError) Error() string {
	if e.Prefix != 0 {
		return fmt.Sprintf("z80: unimplemented opcode %02X %02X at %04X", e.Prefix, e.Code, e.PC)
	}
	return fmt.Sprintf("z80: unimplemented opcode %02X at %04X", e.Code, e.PC)
}

// CPU drives one emulated Z80 over an Environment. Instances are
// independent; the shared dispatch tables are immutable after init.
type CPU struct {
	env Environment
}

// NewCPU wires a CPU to its memory and port implementations. Registers
// start zeroed, PC at 0000h.
func NewCPU(mem Memory, io Io) *CPU {
	cpu := &CPU{}
	cpu.env.Mem = mem
	cpu.env.Io = io
	cpu.env.index = HL
	return cpu
}

// Env exposes the execution context for harnesses and tests.
func (c *CPU) Env() *Environment { return &c.env }

// Registers exposes the register file.
func (c *CPU) Registers() *Registers { return &c.env.Reg }

// Cycles reports the T-states consumed so far.
func (c *CPU) Cycles() uint64 { return c.env.Cycles }

// Halted reports whether HALT has executed since the last Reset.
func (c *CPU) Halted() bool { return c.env.Halted }

// Reset returns the CPU to power-on state: registers, flags, interrupt
// state and the cycle counter all clear. Memory is untouched.
func (c *CPU) Reset() {
	c.env.Reg = Registers{}
	c.env.Cycles = 0
	c.env.Halted = false
	c.env.clearIndex()
}

// Step fetches, decodes and executes one instruction, following DD/FD/CB/ED
// prefix chains to completion. It returns the executed opcode for tracing.
// Repeated DD/FD bytes cost 4 T-states each and the last one wins.
func (c *CPU) Step() (*Opcode, error) {
	env := &c.env
	if env.Halted {
		return nil, ErrHalted
	}
	env.clearIndex()

	pc := env.Reg.Get16(PC)
	code := env.fetch()
	for prefixes := 0; code == prefixDD || code == prefixFD; prefixes++ {
		// A chain longer than the address space has wrapped through
		// nothing but prefix bytes and will repeat forever.
		if prefixes == 0x10000 {
			return nil, ErrPrefixLoop
		}
		if code == prefixDD {
			env.setIndex(IX)
		} else {
			env.setIndex(IY)
		}
		env.Cycles += 4
		pc = env.Reg.Get16(PC)
		code = env.fetch()
	}

	var op *Opcode
	var prefix uint8
	switch code {
	case prefixCB:
		prefix = prefixCB
		if env.index != HL {
			// DD CB d op: displacement precedes the final opcode byte.
			env.preloadDisplacement(env.AdvancePC())
			env.Cycles += 4
		}
		code = env.fetch()
		op = opcodesCB[code]
	case prefixED:
		prefix = prefixED
		code = env.fetch()
		op = opcodesED[code]
	default:
		op = opcodesBase[code]
	}

	if op == nil {
		return nil, &UnimplementedOpcodeError{Prefix: prefix, Code: code, PC: pc}
	}
	op.Execute(env)
	return op, nil
}

// Run steps until HALT or until at least maxCycles T-states have elapsed
// (0 means no limit). A halt is the normal outcome and returns nil.
func (c *CPU) Run(maxCycles uint64) error {
	for {
		if _, err := c.Step(); err != nil {
			if errors.Is(err, ErrHalted) {
				return nil
			}
			return err
		}
		if c.env.Halted {
			return nil
		}
		if maxCycles != 0 && c.env.Cycles >= maxCycles {
			return ErrCycleLimit
		}
	}
}
