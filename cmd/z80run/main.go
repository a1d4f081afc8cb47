package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/z80kit/z80kit/pkg/cpm"
	"github.com/z80kit/z80kit/pkg/memory"
	"github.com/z80kit/z80kit/pkg/snapshot"
	"github.com/z80kit/z80kit/pkg/z80"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "z80run",
		Short: "Z80 emulator — run raw binaries and CP/M test programs",
	}

	// run command
	var org, startPC uint16
	var maxCycles uint64
	var cpmMode bool
	var trace bool
	var loadSnap, saveSnap string

	runCmd := &cobra.Command{
		Use:   "run [binary]",
		Short: "Load a binary into RAM and execute until HALT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if trace {
				log.SetLevel(logrus.DebugLevel)
			}

			mem := memory.New()
			var io z80.Io = &nullIo{log: log}
			if cpmMode {
				bdos := cpm.New(os.Stdout)
				bdos.Log = log
				cpm.InstallTraps(mem)
				io = bdos
			}
			cpu := z80.NewCPU(mem, io)

			switch {
			case loadSnap != "":
				if err := snapshot.Load(loadSnap, cpu, mem); err != nil {
					return err
				}
				log.Infof("resumed from %s at PC=%04X, %d cycles",
					loadSnap, cpu.Registers().Get16(z80.PC), cpu.Cycles())
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				mem.Load(org, data)
				cpu.Registers().Set16(z80.PC, startPC)
				log.Infof("loaded %d bytes at %04X, starting at %04X", len(data), org, startPC)
			default:
				return fmt.Errorf("need a binary or --load-snapshot")
			}

			var runErr error
			if trace {
				runErr = traceRun(cpu, log, maxCycles)
			} else {
				runErr = cpu.Run(maxCycles)
			}

			if saveSnap != "" {
				if err := snapshot.Save(saveSnap, cpu, mem); err != nil {
					return err
				}
				log.Infof("snapshot written to %s", saveSnap)
			}
			if runErr != nil {
				return runErr
			}

			fmt.Printf("\nhalted after %d T-states at PC=%04X\n",
				cpu.Cycles(), cpu.Registers().Get16(z80.PC))
			return nil
		},
	}
	runCmd.Flags().Uint16Var(&org, "org", 0x0100, "Load address for the binary")
	runCmd.Flags().Uint16Var(&startPC, "pc", 0x0100, "Initial program counter")
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Cycle budget (0 = unlimited)")
	runCmd.Flags().BoolVar(&cpmMode, "cpm", false, "Install CP/M BDOS console traps")
	runCmd.Flags().BoolVarP(&trace, "trace", "t", false, "Log every executed instruction")
	runCmd.Flags().StringVar(&loadSnap, "load-snapshot", "", "Resume from a machine snapshot")
	runCmd.Flags().StringVar(&saveSnap, "save-snapshot", "", "Write a machine snapshot on exit")

	// disasm command
	var disOrg uint16

	disasmCmd := &cobra.Command{
		Use:   "disasm [binary]",
		Short: "Decode a binary's opcodes with lengths and base cycle costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			for i := 0; i < len(data); {
				address := disOrg + uint16(i)
				op, size := describe(data[i:])
				fmt.Printf("%04X  ", address)
				for j := 0; j < 4; j++ {
					if j < size {
						fmt.Printf("%02X ", data[i+j])
					} else {
						fmt.Print("   ")
					}
				}
				if op != nil {
					fmt.Printf(" %-16s ; %dT\n", op.Name, op.TStates)
				} else {
					fmt.Println(" ?")
				}
				i += size
			}
			return nil
		},
	}
	disasmCmd.Flags().Uint16Var(&disOrg, "org", 0x0100, "Origin address for listing")

	// info command
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Report dispatch table coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, cb, ed := 0, 0, 0
			for code := 0; code < 256; code++ {
				if z80.BaseOpcode(uint8(code)) != nil {
					base++
				}
				if z80.CBOpcode(uint8(code)) != nil {
					cb++
				}
				if z80.EDOpcode(uint8(code)) != nil {
					ed++
				}
			}
			fmt.Printf("base page: %d/256 (4 prefix bytes excluded)\n", base)
			fmt.Printf("CB page:   %d/256\n", cb)
			fmt.Printf("ED page:   %d/256\n", ed)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, disasmCmd, infoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func traceRun(cpu *z80.CPU, log *logrus.Logger, maxCycles uint64) error {
	for !cpu.Halted() {
		pc := cpu.Registers().Get16(z80.PC)
		op, err := cpu.Step()
		if err != nil {
			return err
		}
		log.Debugf("%04X  %-16s AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X cyc=%d",
			pc, op.Name,
			cpu.Registers().Get16(z80.AF),
			cpu.Registers().Get16(z80.BC),
			cpu.Registers().Get16(z80.DE),
			cpu.Registers().Get16(z80.HL),
			cpu.Registers().Get16(z80.SP),
			cpu.Cycles())
		if maxCycles != 0 && cpu.Cycles() >= maxCycles {
			return z80.ErrCycleLimit
		}
	}
	return nil
}

// describe decodes one instruction head from raw bytes for the listing.
// Prefixed forms report the prefix cost in the byte count, not the cycles.
func describe(data []byte) (*z80.Opcode, int) {
	if len(data) == 0 {
		return nil, 0
	}
	switch data[0] {
	case 0xCB:
		if len(data) < 2 {
			return nil, 1
		}
		return z80.CBOpcode(data[1]), 2
	case 0xED:
		if len(data) < 2 {
			return nil, 1
		}
		op := z80.EDOpcode(data[1])
		if op == nil {
			return nil, 2
		}
		return op, op.Bytes
	case 0xDD, 0xFD:
		if len(data) < 2 {
			return nil, 1
		}
		if data[1] == 0xCB {
			if len(data) < 4 {
				return nil, 2
			}
			return z80.CBOpcode(data[3]), 4
		}
		op := z80.BaseOpcode(data[1])
		if op == nil {
			return nil, 2
		}
		size := op.Bytes + 1
		if strings.Contains(op.Name, "(HL)") {
			size++ // displacement byte of the (IX+d)/(IY+d) form
		}
		return op, size
	default:
		op := z80.BaseOpcode(data[0])
		if op == nil {
			return nil, 1
		}
		return op, op.Bytes
	}
}

// nullIo floats the bus on reads and logs writes.
type nullIo struct {
	log *logrus.Logger
}

func (n *nullIo) PortIn(env *z80.Environment, address uint16) uint8 {
	return 0xFF
}

func (n *nullIo) PortOut(env *z80.Environment, address uint16, value uint8) {
	n.log.Debugf("port out %04X <- %02X", address, value)
}
