package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) *Program {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"addi r1, 1",
		"push r1",
		"halt",
	)

	dbg := prog.Debug(0x2000)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x2004)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x2008)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)
	assert.Equal("subi r31, 8", dbg.Codes[dbg.Index].String())

	dbg = prog.Debug(0x200c)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, "halt")

	dbg := prog.Debug(0x1000)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x2004)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"addi r1, 5",
		"halt",
		".data",
		"0x0102030405060708",
	)

	assert.Equal([]byte{
		0x05, 0x00, 0x40, 0xc8,
		0x00, 0x00, 0x00, 0x78,
	}, prog.Binary())
	assert.Equal([]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, prog.DataBinary())

	img := prog.Image()
	assert.Equal(uint64(CODE_BASE), img.CodeBase)
	assert.Equal(uint64(8), img.CodeSize)
	assert.Equal(uint64(DATA_BASE), img.DataBase)
	assert.Equal(uint64(8), img.DataSize)
	assert.Equal(prog.Binary(), img.Code)
}

func TestProgram_WriteListing(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		":loop",
		"push r1",
		"pop r2",
		"brr -8",
		"ld r4, :loop",
		".data",
		"7",
		"-1",
	)

	var buf bytes.Buffer
	assert.NoError(prog.WriteListing(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(".code", lines[0])
	assert.Equal("\tmov (r31)(-8), r1", lines[1])
	assert.Equal("\tsubi r31, 8", lines[2])
	assert.Equal("\tmov r2, (r31)(0)", lines[3])
	assert.Equal("\taddi r31, 8", lines[4])
	assert.Equal("\tbrr -8", lines[5])
	assert.Equal("\txor r4, r4, r4", lines[6])
	assert.Equal("\taddi r4, 2", lines[15])
	assert.Equal("\tshftli r4, 12", lines[16])
	assert.Equal("\taddi r4, 0", lines[17])
	assert.Equal(".data", lines[18])
	assert.Equal("\t7", lines[19])
	assert.Equal("\t18446744073709551615", lines[20])
	assert.Equal(21, len(lines))

	// The listing reassembles to the same image.
	again := assemble(t, lines...)
	assert.Equal(prog.Binary(), again.Binary())
	assert.Equal(prog.DataBinary(), again.DataBinary())
}
