package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Labels maps label names to absolute addresses.
// It is written once by Layout.Assign and read-only afterwards.
type Labels struct {
	address map[string]uint64
}

// Lookup returns the address bound to a label.
func (lt Labels) Lookup(name string) (addr uint64, ok bool) {
	addr, ok = lt.address[name]
	return
}

// Len returns the number of bound labels.
func (lt Labels) Len() int {
	return len(lt.address)
}

// All iterates over the labels in name order.
func (lt Labels) All() iter.Seq2[string, uint64] {
	return func(yield func(name string, addr uint64) bool) {
		for _, name := range slices.Sorted(maps.Keys(lt.address)) {
			if !yield(name, lt.address[name]) {
				return
			}
		}
	}
}

// Map returns a copy of the label table.
func (lt Labels) Map() map[string]uint64 {
	return maps.Clone(lt.address)
}

// Resolve returns the literal an operand stands for, resolving label references.
func (lt Labels) Resolve(op Operand) (out Operand, err error) {
	if op.Kind != OPERAND_LABEL {
		out = op
		return
	}

	addr, ok := lt.Lookup(op.Label)
	if !ok {
		err = ErrLabelMissing(op.Label)
		return
	}

	out = MakeLiteral(addr)
	return
}

// Substitute replaces every label reference operand of an instruction with
// the literal address it is bound to.
func (lt Labels) Substitute(entry *Entry) (err error) {
	if entry.Kind != ENTRY_INSTRUCTION {
		return
	}

	// Source entries share operand storage with their expansions.
	entry.Operands = slices.Clone(entry.Operands)
	for n, op := range entry.Operands {
		if op.Kind != OPERAND_LABEL {
			continue
		}
		if entry.Operands[n], err = lt.Resolve(op); err != nil {
			return
		}
	}

	return
}

// Layout holds the base addresses of the code and data regions.
type Layout struct {
	CodeBase uint64
	DataBase uint64
}

// Assign is the first assembler pass. It walks entries in order, assigns
// every sized entry an address in its region, and binds each label to the
// address of the next sized entry, code or data.
func (layout Layout) Assign(entries []Entry) (labels Labels, err error) {
	labels.address = make(map[string]uint64)

	code := layout.CodeBase
	data := layout.DataBase

	var pending []int

	bind := func(addr uint64) (err error) {
		for _, n := range pending {
			label := &entries[n]
			if _, ok := labels.address[label.Label]; ok {
				return ErrSyntax{LineNo: label.LineNo, Line: label.Line, Err: ErrLabelDuplicate}
			}
			label.Address = addr
			labels.address[label.Label] = addr
		}
		pending = pending[:0]
		return
	}

	for n := range entries {
		entry := &entries[n]
		switch entry.Kind {
		case ENTRY_LABEL:
			pending = append(pending, n)
		case ENTRY_DATA:
			if err = bind(data); err != nil {
				return
			}
			entry.Address = data
			entry.Size = DATA_SIZE
			data += DATA_SIZE
		case ENTRY_INSTRUCTION:
			if err = bind(code); err != nil {
				return
			}
			entry.Address = code
			entry.Size = entry.Mnemonic.Size()
			code += entry.Size
		}
	}

	if len(pending) != 0 {
		label := entries[pending[0]]
		err = ErrSyntax{LineNo: label.LineNo, Line: label.Line, Err: ErrLabelUnbound}
		return
	}

	return
}
