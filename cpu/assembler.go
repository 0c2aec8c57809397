// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":    "0",
	"CODE_BASE": fmt.Sprintf("%#x", CODE_BASE),
	"DATA_BASE": fmt.Sprintf("%#x", DATA_BASE),
}

// Assembler is a two pass assembler for Tinker programs.
type Assembler struct {
	Verbose  bool    // If set, verbosely logs the assembler actions.
	CodeBase uint64  // Code region base; CODE_BASE if zero.
	DataBase uint64  // Data region base; DATA_BASE if zero.
	Entries  []Entry // Parsed source entries.
	Labels   Labels  // Resolved labels, valid after Parse.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value64, negative, perr := ParseLiteral(str)
		if perr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		if negative {
			pred[key] = starlark.MakeInt64(int64(value64))
		} else {
			pred[key] = starlark.MakeUint64(value64)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	if st_int64, ok := st_int.Int64(); ok {
		value = uint64(st_int64)
		return
	}
	value, ok = st_int.Uint64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// evaluate replaces character constants and $() expressions with numbers.
func (asm *Assembler) evaluate(line string) (out string, err error) {
	out = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	out = reExpression.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})

	return
}

// equate replaces a word that names an equate with its value.
func (asm *Assembler) equate(word string) string {
	value, ok := asm.Equate[word]
	if ok {
		return value
	}
	return word
}

// parseLine parses a single line into zero or more entries.
func (asm *Assembler) parseLine(line string, lineno int, section *Section) (entries []Entry, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	line, err = asm.evaluate(line)
	if err != nil {
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	entry := Entry{LineNo: lineno, Line: line}

	switch {
	case fields[0] == ".equ":
		// .equ CONST VALUE
		if len(fields) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[fields[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[fields[1]] = fields[2]
		return
	case fields[0] == ".code" || fields[0] == ".data":
		if len(fields) != 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		*section = SECTION_CODE
		if fields[0] == ".data" {
			*section = SECTION_DATA
		}
		entry.Kind = ENTRY_SECTION
		entry.Section = *section
		entries = append(entries, entry)
		return
	case fields[0][0] == '.':
		err = ErrSectionInvalid
		return
	case fields[0][0] == LABEL_SIGIL:
		if len(fields) != 1 || len(fields[0]) < 2 {
			err = ErrLabelSyntax
			return
		}
		entry.Kind = ENTRY_LABEL
		entry.Label = fields[0][1:]
		entries = append(entries, entry)
		return
	}

	if *section == SECTION_DATA {
		if len(fields) != 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var op Operand
		op, err = ParseOperand(asm.equate(fields[0]))
		if err != nil {
			return
		}
		if op.Kind != OPERAND_LITERAL {
			err = ErrOperandShape
			return
		}
		entry.Kind = ENTRY_DATA
		entry.Operands = []Operand{op}
		entry.Size = DATA_SIZE
		entries = append(entries, entry)
		return
	}

	mn, ok := LookupMnemonic(fields[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	words, err := SplitOperands(strings.TrimSpace(line[strings.Index(line, fields[0])+len(fields[0]):]))
	if err != nil {
		return
	}

	for _, word := range words {
		var op Operand
		op, err = ParseOperand(asm.equate(word))
		if err != nil {
			return
		}
		entry.Operands = append(entry.Operands, op)
	}

	entry.Kind = ENTRY_INSTRUCTION
	entry.Mnemonic = mn
	entry.Size = mn.Size()
	entries = append(entries, entry)

	return
}

// Parse parses an input stream into an assembled Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	asm.Entries = asm.Entries[:0]
	asm.Labels = Labels{}
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	section := SECTION_CODE
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var entries []Entry
		entries, err = asm.parseLine(line, lineno, &section)
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
		asm.Entries = append(asm.Entries, entries...)
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	return asm.Assemble(asm.Entries)
}

// Assemble resolves, expands and encodes a list of parsed entries.
func (asm *Assembler) Assemble(entries []Entry) (prog *Program, err error) {
	layout := asm.layout()

	// Pass 1: addresses and labels.
	labels, err := layout.Assign(entries)
	if err != nil {
		return
	}
	asm.Labels = labels

	if asm.Verbose {
		for name, addr := range labels.All() {
			log.Printf("label %v: %#x", name, addr)
		}
	}

	// Macro expansion, against the frozen label table.
	groups := make([][]Entry, len(entries))
	for n, entry := range entries {
		if entry.Kind != ENTRY_INSTRUCTION {
			groups[n] = []Entry{entry}
			continue
		}
		var expanded []Entry
		expanded, err = Expand(entry, labels)
		if err != nil {
			err = ErrSyntax{LineNo: entry.LineNo, Line: entry.Line, Err: err}
			return
		}
		groups[n] = expanded
	}

	// Pass 2: label substitution.
	for _, group := range groups {
		for n := range group {
			err = labels.Substitute(&group[n])
			if err != nil {
				err = ErrSyntax{LineNo: group[n].LineNo, Line: group[n].Line, Err: err}
				return
			}
		}
	}

	prog = &Program{
		CodeBase: layout.CodeBase,
		DataBase: layout.DataBase,
		Labels:   labels,
	}

	for n, entry := range entries {
		group := groups[n]
		switch entry.Kind {
		case ENTRY_DATA:
			prog.Data = append(prog.Data, group[0].Operands[0].Value)
		case ENTRY_INSTRUCTION:
			opcode := Opcode{
				LineNo:   entry.LineNo,
				Address:  entry.Address,
				Words:    entry.Words(),
				Expanded: group,
			}
			for _, ent := range group {
				var code Code
				code, err = Encode(ent)
				if err != nil {
					if entry.Mnemonic.Macro {
						err = ErrMacro{Macro: entry.Mnemonic.Name, Err: err}
					}
					err = ErrSyntax{LineNo: entry.LineNo, Line: entry.Line, Err: err}
					return
				}
				opcode.Codes = append(opcode.Codes, code)
			}
			if uint64(len(opcode.Codes))*CODE_SIZE != entry.Size {
				err = ErrSyntax{LineNo: entry.LineNo, Line: entry.Line, Err: ErrMacroSize}
				return
			}
			if asm.Verbose {
				for i, code := range opcode.Codes {
					log.Printf("%#06x: %08x %v", opcode.Address+uint64(i)*CODE_SIZE, uint32(code), code)
				}
			}
			prog.Opcodes = append(prog.Opcodes, opcode)
		}
	}

	return
}

// layout returns the region layout for this assembler.
func (asm *Assembler) layout() Layout {
	layout := Layout{CodeBase: asm.CodeBase, DataBase: asm.DataBase}
	if layout.CodeBase == 0 {
		layout.CodeBase = CODE_BASE
	}
	if layout.DataBase == 0 {
		layout.DataBase = DATA_BASE
	}
	return layout
}
