// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/tinker/cpu"
	"github.com/ezrec/tinker/internal"
	"github.com/ezrec/tinker/io"
	"github.com/ezrec/tinker/tko"
)

const (
	MEM_SIZE = cpu.MEM_SIZE // Default memory size.
)

var _emulator_defines = map[string]string{
	"STACK_TOP": fmt.Sprintf("%#x", MEM_SIZE),
}

// Emulator state. CPU + console ports.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded program, if known.

	Console io.Console // Console backing the decimal and character ports.

	image *tko.Image // Image reloaded on Reset.
}

// NewEmulator creates a new emulator with the given memory size.
// A size of zero selects MEM_SIZE.
func NewEmulator(size uint) (emu *Emulator) {
	if size == 0 {
		size = MEM_SIZE
	}

	emu = &Emulator{
		Cpu:     cpu.NewCpu(size),
		Program: &cpu.Program{},
	}

	emu.Cpu.SetPort(cpu.PORT_INPUT, emu.Console.DecimalInput())
	emu.Cpu.SetPort(cpu.PORT_DECIMAL, emu.Console.DecimalOutput())
	emu.Cpu.SetPort(cpu.PORT_CHAR, emu.Console.CharOutput())

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load resets the machine and loads a binary image.
func (emu *Emulator) Load(img *tko.Image) (err error) {
	emu.image = img
	emu.Program = &cpu.Program{}
	return emu.Reset()
}

// LoadProgram resets the machine and loads an assembled program,
// keeping its listing for runtime error locations.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	emu.image = prog.Image()
	emu.Program = prog
	return emu.Reset()
}

// Reset the machine state, and reload the current image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	if emu.image != nil {
		err = emu.Cpu.Load(emu.image)
		if err != nil {
			return
		}
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the instruction word at the program counter.
func (emu *Emulator) Code() cpu.Code {
	code, err := emu.Cpu.FetchCode()
	if err != nil {
		return 0
	}

	return code
}

// LineNo returns the current line number for the executing opcode, or 0
// if the program listing is not known.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	return
}

// Run ticks the emulator until it halts or faults.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
