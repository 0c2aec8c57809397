package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/tinker/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	assert.False(emu.Verbose)
	assert.Equal(MEM_SIZE, len(emu.Cpu.Memory))
	assert.Equal(uint64(MEM_SIZE), emu.Cpu.Register[cpu.REG_SP])

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("0x80000", defines["STACK_TOP"])
	assert.Equal("0x80000", defines["MEM_SIZE"])

	small := NewEmulator(0x4000)
	assert.Equal(0x4000, len(small.Cpu.Memory))
}

func doRunSingle(emu *Emulator, program []string, input string, t *testing.T) (output string) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.FailNow()
	}

	emu.Console.Input = strings.NewReader(input)
	console_output := &bytes.Buffer{}
	emu.Console.Output = console_output

	err = emu.LoadProgram(prog)
	assert.NoError(err)

	// Straight line code: every word of every opcode runs in order.
	for _, op := range prog.Opcodes {
		assert.Equal(op.LineNo, emu.LineNo())
		here := program[emu.LineNo()-1]
		for c := range len(op.Codes) {
			assert.Equal(op.Address+uint64(c)*cpu.CODE_SIZE, emu.Cpu.Pc, here)
			debug := emu.Program.Debug(emu.Cpu.Pc)
			assert.Equal(op.Codes[c], emu.Code(), here)
			done, err := emu.Tick()
			if err != nil {
				t.Log(emu.Cpu.String())
				t.Fatalf("%v", err)
			}
			assert.Equal(debug.Codes[debug.Index], op.Codes[c])
			last := op.LineNo == prog.Opcodes[len(prog.Opcodes)-1].LineNo && c == len(op.Codes)-1
			assert.Equal(last, done, here)
		}
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	output = console_output.String()
	return
}

func doRunBranch(emu *Emulator, program []string, input string, t *testing.T) (output string, err error) {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		return
	}

	emu.Console.Input = strings.NewReader(input)
	console_output := &bytes.Buffer{}
	emu.Console.Output = console_output

	err = emu.LoadProgram(prog)
	if err != nil {
		return
	}

	err = emu.Run()
	output = console_output.String()
	return
}

func TestEmulatorPrint(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	program := []string{
		"addi r1, 5",
		"mov r2, 1",
		"out r2, r1",
		"halt",
	}

	output := doRunSingle(emu, program, "", t)
	assert.Equal("5\n", output)
	assert.Equal(uint64(5), emu.Cpu.Register[1])
	assert.Equal(4, emu.Ticks())
}

func TestEmulatorEcho(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	program := []string{
		".equ DECIMAL 1",
		".equ CHAR 3",
		"in r1, r0",
		"in r2, r0",
		"add r3, r1, r2",
		"mov r4, DECIMAL",
		"out r4, r3",
		"mov r4, CHAR",
		"mov r5, '!'",
		"out r4, r5",
		"mov r5, '\\n'",
		"out r4, r5",
		"halt",
	}

	output := doRunSingle(emu, program, "40\n2\n", t)
	assert.Equal("42\n!\n", output)
}

func TestEmulatorFactorial(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	program := []string{
		"; print n! for n read from input",
		"    in r1, r0",
		"    mov r2, 1        ; accumulator",
		"    ld r10, :loop",
		"    ld r11, :done",
		"    ld r12, :fact",
		"    call r12",
		"    mov r3, 1",
		"    out r3, r2",
		"    halt",
		":fact",
		"    mov r5, r1       ; call keeps its return address at (r31)(-8)",
		":loop",
		"    mul r2, r2, r1",
		"    subi r1, 1",
		"    brnz r10, r1",
		"    br r11",
		":done",
		"    mov r1, r5",
		"    return",
	}

	output, err := doRunBranch(emu, program, "10\n", t)
	assert.NoError(err)
	assert.Equal("3628800\n", output)
	assert.Equal(uint64(10), emu.Cpu.Register[1])

	// Reset reloads the image, and rewinds the console.
	emu.Console.Input = strings.NewReader("5\n")
	var out bytes.Buffer
	emu.Console.Output = &out
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())
	assert.Equal("120\n", out.String())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	program := []string{
		"mov r1, 7",
		"clr r2",
		"div r3, r1, r2",
		"halt",
	}

	_, err := doRunBranch(emu, program, "", t)
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(3, runtime.LineNo)
		assert.Equal(uint64(0x2008), runtime.Pc)
		assert.Contains(runtime.Error(), "line 3")
	}
	assert.False(emu.Cpu.Halted)
}

func TestEmulatorLoadImage(t *testing.T) {
	assert := assert.New(t)

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader("brr 0\n"))
	assert.NoError(err)

	emu := NewEmulator(0x4000)
	assert.NoError(emu.Load(prog.Image()))
	assert.Equal(0, emu.LineNo())

	// A relative branch by zero spins in place.
	for range 10 {
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}
	assert.Equal(uint64(cpu.CODE_BASE), emu.Cpu.Pc)
	assert.Equal(10, emu.Ticks())

	// Faults without a listing report only the program counter.
	emu.Cpu.Pc = 0x4000
	_, err = emu.Tick()
	assert.ErrorIs(err, cpu.ErrMemoryBounds)
	assert.Contains(err.Error(), "pc 0x4000")
}

func TestEmulatorInputError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0)

	_, err := doRunBranch(emu, []string{"in r1, r0", "halt"}, "-3\n", t)
	assert.Error(err)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(1, runtime.LineNo)
}
