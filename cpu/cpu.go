package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math"

	"github.com/ezrec/tinker/io"
	"github.com/ezrec/tinker/tko"
)

// Port is an I/O port interface.
type Port io.Port

// Port numbers addressed by the priv instruction.
const (
	PORT_INPUT   = 0 // Decimal input.
	PORT_DECIMAL = 1 // Decimal output.
	PORT_CHAR    = 3 // Character output.
	PORT_COUNT   = 8
)

var _cpu_defines = map[string]string{
	"MEM_SIZE":     fmt.Sprintf("%#x", MEM_SIZE),
	"PORT_INPUT":   fmt.Sprintf("%d", PORT_INPUT),
	"PORT_DECIMAL": fmt.Sprintf("%d", PORT_DECIMAL),
	"PORT_CHAR":    fmt.Sprintf("%d", PORT_CHAR),
}

// Cpu is the simulation context for the Tinker machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       uint64                 // Program counter.
	Register [REGISTER_COUNT]uint64 // Register bank.
	Memory   []byte                 // Flat byte addressable memory.
	Halted   bool                   // Set by priv halt.

	Ticks int // Instructions executed.

	port [PORT_COUNT]Port // IO ports.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size uint) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: make([]byte, size),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("   pc: %08x  halted: %v\n", cpu.Pc, cpu.Halted)
	for n := 0; n < REGISTER_COUNT; n += 4 {
		for i := n; i < n+4; i++ {
			text += fmt.Sprintf("% 5s: %016x", Register(i).String(), cpu.Register[i])
		}
		text += "\n"
	}
	return
}

// Reset the CPU state.
// - Clears registers and memory.
// - Sets the stack pointer to the top of memory.
// - Sets the program counter to the code base.
// - Rewinds all ports.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory)
	cpu.Register[REG_SP] = uint64(len(cpu.Memory))
	cpu.Pc = CODE_BASE
	cpu.Halted = false
	cpu.Ticks = 0

	for _, port := range cpu.port {
		if port != nil {
			port.Rewind()
		}
	}
}

// Load copies an image into memory and points the program counter at its code.
func (cpu *Cpu) Load(img *tko.Image) (err error) {
	for _, region := range []struct {
		base uint64
		data []byte
	}{
		{img.CodeBase, img.Code},
		{img.DataBase, img.Data},
	} {
		if len(region.data) == 0 {
			continue
		}
		if !cpu.inBounds(region.base, uint64(len(region.data))) {
			err = ErrImageTooLarge
			return
		}
		copy(cpu.Memory[region.base:], region.data)
	}

	cpu.Pc = img.CodeBase
	cpu.Halted = false

	if cpu.Verbose {
		log.Printf("cpu: loaded %d code bytes at %#x, %d data bytes at %#x",
			len(img.Code), img.CodeBase, len(img.Data), img.DataBase)
	}

	return
}

// SetPort sets a port index to a port model.
func (cpu *Cpu) SetPort(index int, port Port) {
	cpu.port[index] = port
}

// GetPort gets the port model by index.
func (cpu *Cpu) GetPort(index uint64) (port Port, err error) {
	if index >= uint64(len(cpu.port)) || cpu.port[index] == nil {
		err = ErrPortInvalid
		return
	}

	port = cpu.port[index]
	return
}

// inBounds returns true if [addr, addr+size) lies inside memory.
func (cpu *Cpu) inBounds(addr uint64, size uint64) bool {
	limit := uint64(len(cpu.Memory))
	return size <= limit && addr <= limit-size
}

// ReadMemory reads a little-endian value of 4 or 8 bytes.
func (cpu *Cpu) ReadMemory(addr uint64, size int) (value uint64, err error) {
	if !cpu.inBounds(addr, uint64(size)) {
		err = fmt.Errorf("%w: read %#x", ErrMemoryBounds, addr)
		return
	}

	switch size {
	case 4:
		value = uint64(binary.LittleEndian.Uint32(cpu.Memory[addr:]))
	case 8:
		value = binary.LittleEndian.Uint64(cpu.Memory[addr:])
	default:
		panic("unsupported memory access size")
	}

	return
}

// WriteMemory writes a little-endian value of 4 or 8 bytes.
func (cpu *Cpu) WriteMemory(addr uint64, value uint64, size int) (err error) {
	if !cpu.inBounds(addr, uint64(size)) {
		err = fmt.Errorf("%w: write %#x", ErrMemoryBounds, addr)
		return
	}

	switch size {
	case 4:
		binary.LittleEndian.PutUint32(cpu.Memory[addr:], uint32(value))
	case 8:
		binary.LittleEndian.PutUint64(cpu.Memory[addr:], value)
	default:
		panic("unsupported memory access size")
	}

	return
}

// FetchCode fetches the instruction word at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	word, err := cpu.ReadMemory(cpu.Pc, CODE_SIZE)
	if err != nil {
		return
	}

	code = Code(word)
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	return cpu.Execute(code)
}

// Run ticks until the CPU halts or faults.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halted {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}
	return
}

// target validates a control transfer target.
func (cpu *Cpu) target(addr uint64) (next uint64, err error) {
	if !cpu.inBounds(addr, CODE_SIZE) {
		err = fmt.Errorf("%w: %#x", ErrTargetBounds, addr)
		return
	}
	next = addr
	return
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	op, rd, rs, rt, imm := code.Decode()
	for _, r := range []Register{rd, rs, rt} {
		if !r.Valid() {
			err = ErrRegisterIndex
			return
		}
	}
	if !op.Valid() {
		err = ErrOpcodeUndefined
		return
	}

	if cpu.Verbose {
		log.Printf("%08x: %v", cpu.Pc, code)
	}

	reg := &cpu.Register
	next_pc := cpu.Pc + CODE_SIZE
	uimm := uint64(imm)
	simm := SignExtend(imm)

	fcast := func(r Register) float64 { return math.Float64frombits(reg[r]) }
	fset := func(r Register, value float64) { reg[r] = math.Float64bits(value) }

	switch op {
	case OP_AND:
		reg[rd] = reg[rs] & reg[rt]
	case OP_OR:
		reg[rd] = reg[rs] | reg[rt]
	case OP_XOR:
		reg[rd] = reg[rs] ^ reg[rt]
	case OP_NOT:
		reg[rd] = ^reg[rs]
	case OP_SHFTR:
		reg[rd] = reg[rs] >> reg[rt]
	case OP_SHFTRI:
		reg[rd] >>= uimm
	case OP_SHFTL:
		reg[rd] = reg[rs] << reg[rt]
	case OP_SHFTLI:
		reg[rd] <<= uimm
	case OP_BR:
		next_pc, err = cpu.target(reg[rd])
	case OP_BRR:
		next_pc, err = cpu.target(cpu.Pc + reg[rd])
	case OP_BRR_L:
		next_pc, err = cpu.target(cpu.Pc + simm)
	case OP_BRNZ:
		if reg[rs] != 0 {
			next_pc, err = cpu.target(reg[rd])
		}
	case OP_CALL:
		next_pc, err = cpu.target(reg[rd])
		if err != nil {
			return
		}
		err = cpu.WriteMemory(reg[REG_SP]-DATA_SIZE, cpu.Pc+CODE_SIZE, DATA_SIZE)
	case OP_RETURN:
		var ret uint64
		ret, err = cpu.ReadMemory(reg[REG_SP]-DATA_SIZE, DATA_SIZE)
		if err != nil {
			return
		}
		next_pc, err = cpu.target(ret)
	case OP_BRGT:
		if reg[rs] > reg[rt] {
			next_pc, err = cpu.target(reg[rd])
		}
	case OP_PRIV:
		err = cpu.priv(rd, rs, imm)
	case OP_MOV_LOAD:
		var value uint64
		value, err = cpu.ReadMemory(reg[rs]+simm, DATA_SIZE)
		if err != nil {
			return
		}
		reg[rd] = value
	case OP_MOV_REG:
		reg[rd] = reg[rs]
	case OP_MOV_LIT:
		reg[rd] = (reg[rd] &^ IMM_MASK) | uimm
	case OP_MOV_STORE:
		err = cpu.WriteMemory(reg[rd]+simm, reg[rs], DATA_SIZE)
	case OP_ADDF:
		fset(rd, fcast(rs)+fcast(rt))
	case OP_SUBF:
		fset(rd, fcast(rs)-fcast(rt))
	case OP_MULF:
		fset(rd, fcast(rs)*fcast(rt))
	case OP_DIVF:
		if fcast(rt) == 0.0 {
			err = ErrDivideByZero
			return
		}
		fset(rd, fcast(rs)/fcast(rt))
	case OP_ADD:
		reg[rd] = reg[rs] + reg[rt]
	case OP_ADDI:
		reg[rd] += uimm
	case OP_SUB:
		reg[rd] = reg[rs] - reg[rt]
	case OP_SUBI:
		reg[rd] -= uimm
	case OP_MUL:
		reg[rd] = reg[rs] * reg[rt]
	case OP_DIV:
		if reg[rt] == 0 {
			err = ErrDivideByZero
			return
		}
		reg[rd] = reg[rs] / reg[rt]
	default:
		err = ErrOpcodeUndefined
	}

	if err != nil {
		return
	}

	cpu.Ticks++
	cpu.Pc = next_pc

	return
}

// priv executes the privileged operation selected by the immediate.
func (cpu *Cpu) priv(rd, rs Register, imm uint16) (err error) {
	reg := &cpu.Register

	switch {
	case imm == PRIV_HALT:
		cpu.Halted = true
		if cpu.Verbose {
			log.Printf("cpu: halt")
		}
	case imm == PRIV_INPUT && reg[rs] == PORT_INPUT:
		var port Port
		port, err = cpu.GetPort(reg[rs])
		if err != nil {
			return
		}
		var value uint64
		value, err = port.Receive()
		if err != nil {
			return
		}
		reg[rd] = value
	case imm == PRIV_OUTPUT && (reg[rd] == PORT_DECIMAL || reg[rd] == PORT_CHAR):
		var port Port
		port, err = cpu.GetPort(reg[rd])
		if err != nil {
			return
		}
		err = port.Send(reg[rs])
	default:
		err = ErrPrivInvalid
	}

	return
}
