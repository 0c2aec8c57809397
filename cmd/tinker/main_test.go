package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/tinker/cpu"
	"github.com/ezrec/tinker/tko"
)

func writeSource(t *testing.T, dir string, lines ...string) string {
	path := filepath.Join(dir, "prog.tk")
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir,
		":start",
		"    mov r1, PORT_DECIMAL",
		"    mov r2, $(MEM_SIZE >> 12)",
		"    out r1, r2",
		"    halt",
		".data",
		"    99",
	)
	output := filepath.Join(dir, "prog.tko")
	listing := filepath.Join(dir, "prog.lst")

	assert.NoError(assemble(source, output, listing))

	img, err := tko.ReadFile(output)
	assert.NoError(err)
	assert.Equal(uint64(cpu.CODE_BASE), img.CodeBase)
	assert.Equal(uint64(16), img.CodeSize)
	assert.Equal(uint64(8), img.DataSize)

	text, err := os.ReadFile(listing)
	assert.NoError(err)
	assert.Equal(".code\n\tmov r1, 1\n\tmov r2, 0x80\n\tpriv r1, r2, r0, 4\n\tpriv r0, r0, r0, 0\n.data\n\t99\n", string(text))

	var buf bytes.Buffer
	assert.NoError(disassemble(&buf, img))
	assert.Contains(buf.String(), "priv r1, r2, r0, 0x4")
	assert.Contains(buf.String(), "mov r2, 128")
	assert.Contains(buf.String(), "\t99")
}

func TestAssembleDefine(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "addi r1, COUNT")
	output := filepath.Join(dir, "prog.tko")

	asmFlags.defines = []string{"COUNT=12"}
	defer func() { asmFlags.defines = nil }()

	assert.NoError(assemble(source, output, ""))
	img, err := tko.ReadFile(output)
	assert.NoError(err)
	assert.Equal([]byte{0x0c, 0x00, 0x40, 0xc8}, img.Code)

	asmFlags.defines = []string{"COUNT"}
	assert.Error(assemble(source, output, ""))
}

func TestAssembleError(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir,
		"addi r1, 1",
		"mov r1, 5000",
	)
	output := filepath.Join(dir, "prog.tko")
	listing := filepath.Join(dir, "prog.lst")

	err := assemble(source, output, listing)
	var erange cpu.ErrRange
	assert.True(errors.As(err, &erange))

	_, err = os.Stat(output)
	assert.True(errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(listing)
	assert.True(errors.Is(err, os.ErrNotExist))

	// A listing that cannot be written removes the image too.
	good := writeSource(t, dir, "halt")
	err = assemble(good, output, filepath.Join(dir, "nodir", "prog.lst"))
	assert.Error(err)
	_, err = os.Stat(output)
	assert.True(errors.Is(err, os.ErrNotExist))
}
