package cpu

import (
	"fmt"
)

// Op is a 5-bit operation code.
type Op int

const (
	OP_AND       = Op(0x00) // and
	OP_OR        = Op(0x01) // or
	OP_XOR       = Op(0x02) // xor
	OP_NOT       = Op(0x03) // not
	OP_SHFTR     = Op(0x04) // shftr
	OP_SHFTRI    = Op(0x05) // shftri
	OP_SHFTL     = Op(0x06) // shftl
	OP_SHFTLI    = Op(0x07) // shftli
	OP_BR        = Op(0x08) // br
	OP_BRR       = Op(0x09) // brr rd
	OP_BRR_L     = Op(0x0a) // brr L
	OP_BRNZ      = Op(0x0b) // brnz
	OP_CALL      = Op(0x0c) // call
	OP_RETURN    = Op(0x0d) // return
	OP_BRGT      = Op(0x0e) // brgt
	OP_PRIV      = Op(0x0f) // priv
	OP_MOV_LOAD  = Op(0x10) // mov rd, (rs)(L)
	OP_MOV_REG   = Op(0x11) // mov rd, rs
	OP_MOV_LIT   = Op(0x12) // mov rd, L
	OP_MOV_STORE = Op(0x13) // mov (rd)(L), rs
	OP_ADDF      = Op(0x14) // addf
	OP_SUBF      = Op(0x15) // subf
	OP_MULF      = Op(0x16) // mulf
	OP_DIVF      = Op(0x17) // divf
	OP_ADD       = Op(0x18) // add
	OP_ADDI      = Op(0x19) // addi
	OP_SUB       = Op(0x1a) // sub
	OP_SUBI      = Op(0x1b) // subi
	OP_MUL       = Op(0x1c) // mul
	OP_DIV       = Op(0x1d) // div
)

// Format is the operand layout of an operation, used by the disassembler.
type Format int

const (
	FORMAT_NONE  = Format(iota) // return
	FORMAT_R                    // rd
	FORMAT_L                    // L (signed)
	FORMAT_RR                   // rd, rs
	FORMAT_RL                   // rd, L
	FORMAT_RRR                  // rd, rs, rt
	FORMAT_RRRL                 // rd, rs, rt, L
	FORMAT_LOAD                 // rd, (rs)(L)
	FORMAT_STORE                // (rd)(L), rs
)

type opInfo struct {
	name   string
	format Format
}

// opTable is the reverse mapping from opcode to operation.
var opTable = map[Op]opInfo{
	OP_AND:       {"and", FORMAT_RRR},
	OP_OR:        {"or", FORMAT_RRR},
	OP_XOR:       {"xor", FORMAT_RRR},
	OP_NOT:       {"not", FORMAT_RR},
	OP_SHFTR:     {"shftr", FORMAT_RRR},
	OP_SHFTRI:    {"shftri", FORMAT_RL},
	OP_SHFTL:     {"shftl", FORMAT_RRR},
	OP_SHFTLI:    {"shftli", FORMAT_RL},
	OP_BR:        {"br", FORMAT_R},
	OP_BRR:       {"brr", FORMAT_R},
	OP_BRR_L:     {"brr", FORMAT_L},
	OP_BRNZ:      {"brnz", FORMAT_RR},
	OP_CALL:      {"call", FORMAT_R},
	OP_RETURN:    {"return", FORMAT_NONE},
	OP_BRGT:      {"brgt", FORMAT_RRR},
	OP_PRIV:      {"priv", FORMAT_RRRL},
	OP_MOV_LOAD:  {"mov", FORMAT_LOAD},
	OP_MOV_REG:   {"mov", FORMAT_RR},
	OP_MOV_LIT:   {"mov", FORMAT_RL},
	OP_MOV_STORE: {"mov", FORMAT_STORE},
	OP_ADDF:      {"addf", FORMAT_RRR},
	OP_SUBF:      {"subf", FORMAT_RRR},
	OP_MULF:      {"mulf", FORMAT_RRR},
	OP_DIVF:      {"divf", FORMAT_RRR},
	OP_ADD:       {"add", FORMAT_RRR},
	OP_ADDI:      {"addi", FORMAT_RL},
	OP_SUB:       {"sub", FORMAT_RRR},
	OP_SUBI:      {"subi", FORMAT_RL},
	OP_MUL:       {"mul", FORMAT_RRR},
	OP_DIV:       {"div", FORMAT_RRR},
}

// Valid returns true if the opcode is assigned to an operation.
func (op Op) Valid() bool {
	_, ok := opTable[op]
	return ok
}

// Format returns the operand format of the operation.
func (op Op) Format() Format {
	return opTable[op].format
}

func (op Op) String() string {
	info, ok := opTable[op]
	if !ok {
		return fmt.Sprintf("op(0x%02x)", int(op))
	}
	return info.name
}

// Register is a general purpose register index.
type Register int

const (
	REGISTER_COUNT = 32
	REG_SP         = Register(31) // Stack pointer, by convention.
)

// Valid returns true if the index names one of the 32 registers.
func (r Register) Valid() bool {
	return r >= 0 && r < REGISTER_COUNT
}

func (r Register) String() string {
	return fmt.Sprintf("r%d", int(r))
}

// Immediate field limits.
const (
	IMM_BITS            = 12
	IMM_MASK            = (1 << IMM_BITS) - 1
	IMM_UNSIGNED_MAX    = IMM_MASK
	IMM_SIGNED_MIN      = -(1 << (IMM_BITS - 1))
	IMM_SIGNED_MAX      = (1 << (IMM_BITS - 1)) - 1
	CODE_SIZE           = 4 // Bytes per instruction word.
	DATA_SIZE           = 8 // Bytes per data word.
	IMM_SIGN_BIT uint64 = 1 << (IMM_BITS - 1)
)

// Code is a single encoded 32-bit instruction word.
type Code uint32

// MakeCode packs an instruction. The immediate is truncated to 12 bits;
// callers must have checked its range.
func MakeCode(op Op, rd, rs, rt Register, imm uint16) Code {
	word := uint32(op) & 0x1f
	word = (word << 5) | (uint32(rd) & 0x1f)
	word = (word << 5) | (uint32(rs) & 0x1f)
	word = (word << 5) | (uint32(rt) & 0x1f)
	word = (word << IMM_BITS) | (uint32(imm) & IMM_MASK)
	return Code(word)
}

// Op returns the opcode field.
func (code Code) Op() Op {
	return Op((uint32(code) >> 27) & 0x1f)
}

// Decode returns all fields of the instruction word.
func (code Code) Decode() (op Op, rd, rs, rt Register, imm uint16) {
	word := uint32(code)
	imm = uint16(word & IMM_MASK)
	word >>= IMM_BITS
	rt = Register(word & 0x1f)
	word >>= 5
	rs = Register(word & 0x1f)
	word >>= 5
	rd = Register(word & 0x1f)
	word >>= 5
	op = Op(word & 0x1f)
	return
}

// SignExtend interprets a 12-bit immediate as a two's complement value.
func SignExtend(imm uint16) uint64 {
	value := uint64(imm) & IMM_MASK
	if value&IMM_SIGN_BIT != 0 {
		value |= ^uint64(IMM_MASK)
	}
	return value
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	op, rd, rs, rt, imm := code.Decode()
	if !op.Valid() {
		return fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	simm := int64(SignExtend(imm))

	switch op.Format() {
	case FORMAT_NONE:
		return op.String()
	case FORMAT_R:
		return fmt.Sprintf("%v %v", op, rd)
	case FORMAT_L:
		return fmt.Sprintf("%v %d", op, simm)
	case FORMAT_RR:
		return fmt.Sprintf("%v %v, %v", op, rd, rs)
	case FORMAT_RL:
		return fmt.Sprintf("%v %v, %d", op, rd, imm)
	case FORMAT_RRR:
		return fmt.Sprintf("%v %v, %v, %v", op, rd, rs, rt)
	case FORMAT_RRRL:
		return fmt.Sprintf("%v %v, %v, %v, %#x", op, rd, rs, rt, imm)
	case FORMAT_LOAD:
		return fmt.Sprintf("%v %v, (%v)(%d)", op, rd, rs, simm)
	case FORMAT_STORE:
		return fmt.Sprintf("%v (%v)(%d), %v", op, rd, simm, rs)
	}

	return op.String()
}
