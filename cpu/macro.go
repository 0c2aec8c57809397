package cpu

// Macro pseudo-instruction lowering.
//
//	clr rd       xor rd, rd, rd
//	halt         priv r0, r0, r0, 0
//	in rd, rs    priv rd, rs, r0, 3
//	out rd, rs   priv rd, rs, r0, 4
//	push rd      mov (r31)(-8), rd
//	             subi r31, 8
//	pop rd       mov rd, (r31)(0)
//	             addi r31, 8
//	ld rd, L     xor rd, rd, rd
//	             addi rd, L[63:60]
//	             shftli rd, 12   (five times, each followed by)
//	             addi rd, L[n+11:n]

const (
	PRIV_HALT   = 0x0 // priv immediate: halt
	PRIV_TRAP   = 0x1 // priv immediate: trap (reserved)
	PRIV_RTE    = 0x2 // priv immediate: return from exception (reserved)
	PRIV_INPUT  = 0x3 // priv immediate: read from port r[rs] into rd
	PRIV_OUTPUT = 0x4 // priv immediate: write rs to port r[rd]
)

// registers checks that every operand is a register, and returns them.
func registers(entry Entry) (regs []Register, err error) {
	if len(entry.Operands) < entry.Mnemonic.Operands {
		err = ErrOpcodeMissingArgs
		return
	}
	if len(entry.Operands) > entry.Mnemonic.Operands {
		err = ErrOpcodeExtraArgs
		return
	}
	for _, op := range entry.Operands {
		if op.Kind != OPERAND_REGISTER {
			err = ErrOperandShape
			return
		}
		regs = append(regs, op.Register)
	}
	return
}

// Expand lowers a macro entry into ordinary instruction entries. Ordinary
// entries are returned unchanged. The expansion always occupies exactly the
// words the instruction table reserves for the macro.
func Expand(entry Entry, labels Labels) (expanded []Entry, err error) {
	if entry.Kind != ENTRY_INSTRUCTION || !entry.Mnemonic.Macro {
		expanded = []Entry{entry}
		return
	}

	name := entry.Mnemonic.Name
	defer func() {
		if err != nil {
			err = ErrMacro{Macro: name, Err: err}
			expanded = nil
			return
		}
		// Lay out the expansion over the span reserved by pass 1.
		for n := range expanded {
			expanded[n].Address = entry.Address + uint64(n)*CODE_SIZE
		}
		if uint64(len(expanded))*CODE_SIZE != entry.Size {
			err = ErrMacro{Macro: name, Err: ErrMacroSize}
			expanded = nil
		}
	}()

	r0 := MakeRegister(0)
	sp := MakeRegister(REG_SP)
	mk := func(name string, ops ...Operand) {
		expanded = append(expanded, makeInstruction(entry, name, ops...))
	}

	if name == "ld" {
		var value uint64
		value, err = ldValue(entry, labels)
		if err != nil {
			return
		}
		rd := entry.Operands[0]
		mk("xor", rd, rd, rd)
		mk("addi", rd, MakeLiteral((value>>60)&0xf))
		for shift := 48; shift >= 0; shift -= IMM_BITS {
			mk("shftli", rd, MakeLiteral(IMM_BITS))
			mk("addi", rd, MakeLiteral((value>>shift)&IMM_MASK))
		}
		return
	}

	regs, err := registers(entry)
	if err != nil {
		return
	}

	switch name {
	case "clr":
		rd := MakeRegister(regs[0])
		mk("xor", rd, rd, rd)
	case "halt":
		mk("priv", r0, r0, r0, MakeLiteral(PRIV_HALT))
	case "in":
		mk("priv", MakeRegister(regs[0]), MakeRegister(regs[1]), r0, MakeLiteral(PRIV_INPUT))
	case "out":
		mk("priv", MakeRegister(regs[0]), MakeRegister(regs[1]), r0, MakeLiteral(PRIV_OUTPUT))
	case "push":
		mk("mov", MakeMemory(REG_SP, -DATA_SIZE), MakeRegister(regs[0]))
		mk("subi", sp, MakeLiteral(DATA_SIZE))
	case "pop":
		mk("mov", MakeRegister(regs[0]), MakeMemory(REG_SP, 0))
		mk("addi", sp, MakeLiteral(DATA_SIZE))
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// ldValue returns the 64-bit value loaded by an ld macro.
func ldValue(entry Entry, labels Labels) (value uint64, err error) {
	if len(entry.Operands) < 2 {
		err = ErrOpcodeMissingArgs
		return
	}
	if len(entry.Operands) > 2 {
		err = ErrOpcodeExtraArgs
		return
	}
	if entry.Operands[0].Kind != OPERAND_REGISTER {
		err = ErrOperandShape
		return
	}

	op, err := labels.Resolve(entry.Operands[1])
	if err != nil {
		return
	}
	if op.Kind != OPERAND_LITERAL {
		err = ErrOpcodeValueMissing
		return
	}

	value = op.Value
	return
}
