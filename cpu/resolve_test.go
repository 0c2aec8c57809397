package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func layoutEntries() []Entry {
	parent := Entry{LineNo: 1}
	return []Entry{
		{Kind: ENTRY_LABEL, Label: "start"},
		makeInstruction(parent, "add", MakeRegister(1), MakeRegister(2), MakeRegister(3)),
		{Kind: ENTRY_SECTION, Section: SECTION_DATA},
		{Kind: ENTRY_LABEL, Label: "table"},
		{Kind: ENTRY_DATA, Operands: []Operand{MakeLiteral(3)}},
		{Kind: ENTRY_DATA, Operands: []Operand{MakeLiteral(7)}},
		{Kind: ENTRY_SECTION, Section: SECTION_CODE},
		makeInstruction(parent, "push", MakeRegister(1)),
		{Kind: ENTRY_LABEL, Label: "end"},
		{Kind: ENTRY_LABEL, Label: "also_end"},
		makeInstruction(parent, "halt"),
	}
}

func TestLayoutAssign(t *testing.T) {
	assert := assert.New(t)

	entries := layoutEntries()
	labels, err := Layout{CodeBase: CODE_BASE, DataBase: DATA_BASE}.Assign(entries)
	assert.NoError(err)

	assert.Equal(map[string]uint64{
		"start":    0x2000,
		"table":    0x1_0000,
		"end":      0x200c,
		"also_end": 0x200c,
	}, labels.Map())
	assert.Equal(4, labels.Len())

	assert.Equal(uint64(0x2000), entries[1].Address)
	assert.Equal(uint64(4), entries[1].Size)
	assert.Equal(uint64(0x1_0000), entries[4].Address)
	assert.Equal(uint64(0x1_0008), entries[5].Address)
	assert.Equal(uint64(0x2004), entries[7].Address)
	assert.Equal(uint64(8), entries[7].Size)
	assert.Equal(uint64(0x200c), entries[10].Address)

	var names []string
	for name := range labels.All() {
		names = append(names, name)
	}
	assert.Equal([]string{"also_end", "end", "start", "table"}, names)
}

func TestLayoutDeterministic(t *testing.T) {
	assert := assert.New(t)

	layout := Layout{CodeBase: 0x4000, DataBase: 0x8000}

	first, err := layout.Assign(layoutEntries())
	assert.NoError(err)
	second, err := layout.Assign(layoutEntries())
	assert.NoError(err)

	assert.Equal(first.Map(), second.Map())
	addr, ok := first.Lookup("start")
	assert.True(ok)
	assert.Equal(uint64(0x4000), addr)
}

func TestLayoutErrors(t *testing.T) {
	assert := assert.New(t)

	layout := Layout{CodeBase: CODE_BASE, DataBase: DATA_BASE}
	parent := Entry{}

	_, err := layout.Assign([]Entry{
		{Kind: ENTRY_LABEL, Label: "twice", LineNo: 1},
		makeInstruction(parent, "halt"),
		{Kind: ENTRY_LABEL, Label: "twice", LineNo: 3},
		makeInstruction(parent, "halt"),
	})
	assert.ErrorIs(err, ErrLabelDuplicate)
	syntax, ok := err.(ErrSyntax)
	assert.True(ok)
	assert.Equal(3, syntax.LineNo)

	_, err = layout.Assign([]Entry{
		makeInstruction(parent, "halt"),
		{Kind: ENTRY_LABEL, Label: "dangling", LineNo: 2},
	})
	assert.ErrorIs(err, ErrLabelUnbound)
}

func TestLabelsSubstitute(t *testing.T) {
	assert := assert.New(t)

	entries := layoutEntries()
	labels, err := Layout{CodeBase: CODE_BASE, DataBase: DATA_BASE}.Assign(entries)
	assert.NoError(err)

	source := makeInstruction(Entry{}, "add", MakeRegister(1), MakeRegister(2), MakeRegister(3))
	source.Operands = []Operand{{Kind: OPERAND_LABEL, Label: "end"}}
	branch := source
	assert.NoError(labels.Substitute(&branch))
	assert.Equal(OPERAND_LITERAL, branch.Operands[0].Kind)
	assert.Equal(uint64(0x200c), branch.Operands[0].Value)

	// The source entry keeps its label reference.
	assert.Equal(OPERAND_LABEL, source.Operands[0].Kind)

	missing := makeInstruction(Entry{}, "br", Operand{Kind: OPERAND_LABEL, Label: "nowhere"})
	err = labels.Substitute(&missing)
	assert.ErrorIs(err, ErrLabelMissing("nowhere"))

	op, err := labels.Resolve(MakeRegister(4))
	assert.NoError(err)
	assert.Equal(MakeRegister(4), op)
}
