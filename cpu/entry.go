package cpu

import (
	"fmt"
	"strings"
)

// EntryKind is the kind of a parsed source entry.
type EntryKind int

const (
	ENTRY_INSTRUCTION = EntryKind(iota) // Mnemonic and operands.
	ENTRY_DATA                          // 64-bit data word.
	ENTRY_LABEL                         // Binds a name to the next sized entry.
	ENTRY_SECTION                       // Switches between code and data.
)

// Section is an emission region.
type Section int

const (
	SECTION_CODE = Section(0) // .code
	SECTION_DATA = Section(1) // .data
)

func (sec Section) String() string {
	if sec == SECTION_DATA {
		return ".data"
	}
	return ".code"
}

// Entry is a single line of a program after parsing.
type Entry struct {
	Kind   EntryKind
	LineNo int
	Line   string

	Mnemonic Mnemonic  // ENTRY_INSTRUCTION
	Operands []Operand // ENTRY_INSTRUCTION; ENTRY_DATA holds exactly one.
	Label    string    // ENTRY_LABEL
	Section  Section   // ENTRY_SECTION

	Address uint64 // Assigned by the resolver for sized entries.
	Size    uint64 // Bytes reserved for the entry.
}

// Words returns the source words of the entry, for listings.
func (ent Entry) Words() (words []string) {
	switch ent.Kind {
	case ENTRY_INSTRUCTION:
		words = append(words, ent.Mnemonic.Name)
		for _, op := range ent.Operands {
			words = append(words, op.Text)
		}
	case ENTRY_DATA:
		words = append(words, ent.Operands[0].Text)
	case ENTRY_LABEL:
		words = append(words, string(LABEL_SIGIL)+ent.Label)
	case ENTRY_SECTION:
		words = append(words, ent.Section.String())
	}
	return
}

func (ent Entry) String() string {
	switch ent.Kind {
	case ENTRY_INSTRUCTION:
		ops := make([]string, len(ent.Operands))
		for n, op := range ent.Operands {
			ops[n] = op.Text
		}
		if len(ops) == 0 {
			return ent.Mnemonic.Name
		}
		return fmt.Sprintf("%v %v", ent.Mnemonic.Name, strings.Join(ops, ", "))
	case ENTRY_DATA:
		return ent.Operands[0].Text
	}
	return strings.Join(ent.Words(), " ")
}

// makeInstruction builds an ordinary instruction entry from a macro.
func makeInstruction(parent Entry, name string, ops ...Operand) Entry {
	mn, ok := LookupMnemonic(name)
	if !ok {
		panic("unknown mnemonic " + name)
	}
	return Entry{
		Kind:     ENTRY_INSTRUCTION,
		LineNo:   parent.LineNo,
		Line:     parent.Line,
		Mnemonic: mn,
		Operands: ops,
		Size:     mn.Size(),
	}
}
