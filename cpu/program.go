package cpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"

	"github.com/ezrec/tinker/tko"
)

// Opcode represents a line of assembled code with its address and generated instructions.
type Opcode struct {
	LineNo   int
	Address  uint64
	Words    []string
	Expanded []Entry // Ordinary instructions the line lowered to.
	Codes    []Code
}

// Program is an assembled program.
type Program struct {
	CodeBase uint64
	DataBase uint64
	Opcodes  []Opcode
	Data     []uint64
	Labels   Labels
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the source line that generated the code at an address.
func (prog *Program) Debug(addr uint64) (dbg Debug) {
	for n, op := range prog.Opcodes {
		size := uint64(len(op.Codes)) * CODE_SIZE
		if addr >= op.Address && addr < op.Address+size {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int((addr - op.Address) / CODE_SIZE),
			}
			break
		}
	}

	return
}

// Codes iterates over every instruction word and its address.
func (prog *Program) Codes() iter.Seq2[uint64, Code] {
	return func(yield func(addr uint64, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Address+uint64(n)*CODE_SIZE, code) {
					return
				}
			}
		}
	}
}

// Binary returns the code region, little-endian.
func (prog *Program) Binary() (bins []byte) {
	for _, code := range prog.Codes() {
		bins = binary.LittleEndian.AppendUint32(bins, uint32(code))
	}

	return
}

// DataBinary returns the data region, little-endian.
func (prog *Program) DataBinary() (bins []byte) {
	for _, value := range prog.Data {
		bins = binary.LittleEndian.AppendUint64(bins, value)
	}

	return
}

// Image returns the binary image of the program.
func (prog *Program) Image() *tko.Image {
	return tko.NewImage(prog.CodeBase, prog.Binary(), prog.DataBase, prog.DataBinary())
}

// WriteListing writes the expanded, label substituted program text.
func (prog *Program) WriteListing(w io.Writer) (err error) {
	if len(prog.Opcodes) > 0 {
		_, err = fmt.Fprintln(w, ".code")
		if err != nil {
			return
		}
	}
	for _, op := range prog.Opcodes {
		for _, ent := range op.Expanded {
			_, err = fmt.Fprintf(w, "\t%v\n", ent)
			if err != nil {
				return
			}
		}
	}

	if len(prog.Data) > 0 {
		_, err = fmt.Fprintln(w, ".data")
		if err != nil {
			return
		}
	}
	for _, value := range prog.Data {
		_, err = fmt.Fprintf(w, "\t%d\n", value)
		if err != nil {
			return
		}
	}

	return
}
