// Package cpm provides a minimal BDOS console trap so CP/M test binaries
// can print through the emulated CPU's port interface.
package cpm

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/z80kit/z80kit/pkg/z80"
)

// BdosPort is the port the trap stub reads: IN A, (5) at address 0005h
// hands control to the host.
const BdosPort = 5

// Bdos services the two BDOS console calls CP/M test programs use:
// function 2 (console output, character in E) and function 9 (write the
// '$'-terminated string at DE). Any other function number is a harness
// bug and panics.
type Bdos struct {
	Out io.Writer
	Log *logrus.Logger
}

func New(out io.Writer) *Bdos {
	return &Bdos{Out: out, Log: logrus.StandardLogger()}
}

func (b *Bdos) PortIn(env *z80.Environment, address uint16) uint8 {
	if uint8(address) == BdosPort {
		b.call(env)
	}
	return 0
}

func (b *Bdos) PortOut(env *z80.Environment, address uint16, value uint8) {
	b.Log.Debugf("port out %04X <- %02X ignored", address, value)
}

func (b *Bdos) call(env *z80.Environment) {
	fn := env.Reg.Get8(z80.C)
	switch fn {
	case 2:
		fmt.Fprintf(b.Out, "%c", env.Reg.Get8(z80.E))
	case 9:
		address := env.Reg.Get16(z80.DE)
		for {
			ch := env.Mem.Peek(address)
			if ch == '$' {
				break
			}
			fmt.Fprintf(b.Out, "%c", ch)
			address++
		}
	default:
		panic(fmt.Sprintf("cpm: BDOS function %d not implemented", fn))
	}
}

// InstallTraps writes the two CP/M entry stubs: a HALT at the warm-boot
// vector 0000h and an IN A, (5) / RET pair at the BDOS entry 0005h.
func InstallTraps(mem z80.Memory) {
	mem.Poke(0x0000, 0x76) // HALT
	mem.Poke(0x0005, 0xDB) // IN A, (n)
	mem.Poke(0x0006, BdosPort)
	mem.Poke(0x0007, 0xC9) // RET
}
