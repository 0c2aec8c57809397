package cpu

import (
	"errors"
)

// MovMode is the addressing mode of a mov instruction.
type MovMode int

const (
	MOV_LOAD  = MovMode(iota) // mov rd, (rs)(L)
	MOV_REG                   // mov rd, rs
	MOV_LIT                   // mov rd, L
	MOV_STORE                 // mov (rd)(L), rs
)

// Op returns the opcode implementing the addressing mode.
func (mode MovMode) Op() Op {
	switch mode {
	case MOV_LOAD:
		return OP_MOV_LOAD
	case MOV_REG:
		return OP_MOV_REG
	case MOV_LIT:
		return OP_MOV_LIT
	case MOV_STORE:
		return OP_MOV_STORE
	}
	panic("unknown mov mode")
}

// SelectMovMode selects the mov variant from the shape of its operands.
func SelectMovMode(a, b Operand) (mode MovMode, err error) {
	switch {
	case a.Kind == OPERAND_REGISTER && b.Kind == OPERAND_MEMORY:
		mode = MOV_LOAD
	case a.Kind == OPERAND_REGISTER && b.Kind == OPERAND_REGISTER:
		mode = MOV_REG
	case a.Kind == OPERAND_REGISTER && b.Kind == OPERAND_LITERAL:
		mode = MOV_LIT
	case a.Kind == OPERAND_MEMORY && b.Kind == OPERAND_REGISTER:
		mode = MOV_STORE
	default:
		err = ErrAddressingMode
	}
	return
}

// encodeMov encodes all four mov addressing modes.
func encodeMov(ops []Operand) (code Code, err error) {
	if len(ops) < 2 {
		err = ErrOpcodeMissingArgs
		return
	}
	if len(ops) > 2 {
		err = ErrOpcodeExtraArgs
		return
	}

	mode, err := SelectMovMode(ops[0], ops[1])
	if err != nil {
		return
	}

	var imm uint16
	switch mode {
	case MOV_LOAD:
		imm, err = ops[1].Signed12()
		code = MakeCode(mode.Op(), ops[0].Register, ops[1].Register, 0, imm)
	case MOV_REG:
		code = MakeCode(mode.Op(), ops[0].Register, ops[1].Register, 0, 0)
	case MOV_LIT:
		imm, err = ops[1].Unsigned12()
		code = MakeCode(mode.Op(), ops[0].Register, 0, 0, imm)
	case MOV_STORE:
		imm, err = ops[0].Signed12()
		code = MakeCode(mode.Op(), ops[0].Register, ops[1].Register, 0, imm)
	}
	if err != nil {
		code = 0
	}

	return
}

// encodeBrr encodes the register and literal forms of brr.
func encodeBrr(ops []Operand) (code Code, err error) {
	if len(ops) < 1 {
		err = ErrOpcodeMissingArgs
		return
	}
	if len(ops) > 1 {
		err = ErrOpcodeExtraArgs
		return
	}

	switch ops[0].Kind {
	case OPERAND_LITERAL:
		var imm uint16
		imm, err = ops[0].Signed12()
		if err != nil {
			return
		}
		code = MakeCode(OP_BRR_L, 0, 0, 0, imm)
	case OPERAND_REGISTER:
		code = MakeCode(OP_BRR, ops[0].Register, 0, 0, 0)
	default:
		err = ErrOperandShape
	}

	return
}

// Encode packs a fully resolved, non-macro instruction entry into one word.
func Encode(entry Entry) (code Code, err error) {
	mn := entry.Mnemonic
	ops := entry.Operands

	if entry.Kind != ENTRY_INSTRUCTION {
		err = ErrOpcodeInvalid
		return
	}
	if mn.Macro {
		err = ErrMacroUnexpanded
		return
	}
	for _, op := range ops {
		if op.Kind == OPERAND_LABEL {
			err = errors.Join(ErrLabelUnresolved, ErrLabelMissing(op.Label))
			return
		}
	}

	switch mn.Op {
	case OP_MOV_LOAD:
		return encodeMov(ops)
	case OP_BRR:
		return encodeBrr(ops)
	}

	if len(ops) > mn.Operands {
		err = ErrOpcodeExtraArgs
		return
	}

	nregs := mn.Operands
	if mn.Immediate {
		nregs--
	}

	var regs [3]Register
	var imm uint16
	for n, op := range ops {
		switch {
		case n < nregs && op.Kind == OPERAND_REGISTER:
			regs[n] = op.Register
		case n < nregs && op.Kind == OPERAND_LITERAL:
			err = ErrOpcodeValueExtra
			return
		case n == nregs && op.Kind == OPERAND_LITERAL:
			imm, err = op.Unsigned12()
			if err != nil {
				return
			}
		case n == nregs && op.Kind == OPERAND_REGISTER:
			err = ErrOpcodeValueMissing
			return
		default:
			err = ErrOperandShape
			return
		}
	}

	if len(ops) < nregs {
		err = ErrOpcodeMissingArgs
		return
	}
	if mn.Immediate && len(ops) == nregs {
		err = ErrOpcodeValueMissing
		return
	}

	code = MakeCode(mn.Op, regs[0], regs[1], regs[2], imm)
	return
}
