package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	OPERAND_REGISTER = OperandKind(iota) // rN
	OPERAND_MEMORY                       // (rN)(offset)
	OPERAND_LITERAL                      // 42, -8, 0x2a
	OPERAND_LABEL                        // :name
)

func (kind OperandKind) String() string {
	switch kind {
	case OPERAND_REGISTER:
		return "register"
	case OPERAND_MEMORY:
		return "memory"
	case OPERAND_LITERAL:
		return "literal"
	case OPERAND_LABEL:
		return "label"
	}
	return fmt.Sprintf("operand(%d)", int(kind))
}

const (
	LABEL_SIGIL  = ':'
	MAX_OPERANDS = 4
)

// Operand is a single parsed instruction or data operand.
type Operand struct {
	Kind     OperandKind
	Text     string   // Source text.
	Register Register // Register, or memory base register.
	Value    uint64   // Literal value or memory offset, two's complement.
	Negative bool     // Literal was written with a leading minus.
	Label    string   // Label name, without the sigil.
}

// MakeRegister returns a register operand.
func MakeRegister(r Register) Operand {
	return Operand{Kind: OPERAND_REGISTER, Text: r.String(), Register: r}
}

// MakeLiteral returns a non-negative literal operand.
func MakeLiteral(value uint64) Operand {
	return Operand{Kind: OPERAND_LITERAL, Text: strconv.FormatUint(value, 10), Value: value}
}

// MakeMemory returns a memory operand.
func MakeMemory(base Register, offset int64) Operand {
	return Operand{
		Kind:     OPERAND_MEMORY,
		Text:     fmt.Sprintf("(%v)(%d)", base, offset),
		Register: base,
		Value:    uint64(offset),
		Negative: offset < 0,
	}
}

func (op Operand) String() string {
	return op.Text
}

// Unsigned12 returns the literal as an unsigned 12-bit immediate.
func (op Operand) Unsigned12() (imm uint16, err error) {
	if op.Negative || op.Value > IMM_UNSIGNED_MAX {
		err = ErrRange{Literal: op.Text, Min: 0, Max: IMM_UNSIGNED_MAX}
		return
	}
	imm = uint16(op.Value)
	return
}

// Signed12 returns the literal as a signed 12-bit immediate, in storage form.
func (op Operand) Signed12() (imm uint16, err error) {
	value := int64(op.Value)
	if op.Negative {
		if value < IMM_SIGNED_MIN {
			err = ErrRange{Literal: op.Text, Min: IMM_SIGNED_MIN, Max: IMM_SIGNED_MAX}
			return
		}
	} else if op.Value > IMM_SIGNED_MAX {
		err = ErrRange{Literal: op.Text, Min: IMM_SIGNED_MIN, Max: IMM_SIGNED_MAX}
		return
	}
	imm = uint16(op.Value & IMM_MASK)
	return
}

// ParseLiteral parses a decimal, negative decimal, or 0x prefixed hex literal.
func ParseLiteral(word string) (value uint64, negative bool, err error) {
	text := word
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	var magnitude uint64
	if len(text) > 2 && (text[:2] == "0x" || text[:2] == "0X") {
		magnitude, err = strconv.ParseUint(text[2:], 16, 64)
	} else {
		magnitude, err = strconv.ParseUint(text, 10, 64)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if negative {
		if magnitude > 1<<63 {
			err = ErrParseNumber(word)
			return
		}
		value = -magnitude
		// "-0" is just zero.
		negative = magnitude != 0
	} else {
		value = magnitude
	}

	return
}

// ParseRegister parses a register reference rN, N in [0,31].
func ParseRegister(word string) (r Register, err error) {
	if len(word) < 2 || word[0] != 'r' {
		err = ErrRegisterInvalid
		return
	}
	n, perr := strconv.ParseUint(word[1:], 10, 8)
	if perr != nil || !Register(n).Valid() {
		err = ErrRegisterInvalid
		return
	}
	r = Register(n)
	return
}

// parseMemory parses (rN) or (rN)(offset).
func parseMemory(word string) (base Register, offset Operand, err error) {
	end := strings.IndexByte(word, ')')
	if word[0] != '(' || end < 0 {
		err = ErrMemoryInvalid
		return
	}

	base, err = ParseRegister(strings.TrimSpace(word[1:end]))
	if err != nil {
		return
	}

	rest := strings.TrimSpace(word[end+1:])
	if len(rest) == 0 {
		offset = MakeLiteral(0)
		return
	}

	if rest[0] != '(' || rest[len(rest)-1] != ')' {
		err = ErrMemoryInvalid
		return
	}

	offset, err = ParseOperand(strings.TrimSpace(rest[1 : len(rest)-1]))
	if err != nil {
		return
	}
	if offset.Kind != OPERAND_LITERAL {
		err = ErrMemoryInvalid
		return
	}

	return
}

// ParseOperand classifies and decodes a single trimmed operand.
func ParseOperand(word string) (op Operand, err error) {
	op.Text = word

	if len(word) == 0 {
		err = ErrOperandEmpty
		return
	}

	switch word[0] {
	case LABEL_SIGIL:
		op.Kind = OPERAND_LABEL
		op.Label = word[1:]
		if len(op.Label) == 0 || strings.ContainsAny(op.Label, " \t") {
			err = ErrLabelSyntax
		}
	case 'r':
		op.Kind = OPERAND_REGISTER
		op.Register, err = ParseRegister(word)
	case '(':
		op.Kind = OPERAND_MEMORY
		var offset Operand
		op.Register, offset, err = parseMemory(word)
		op.Value = offset.Value
		op.Negative = offset.Negative
	default:
		op.Kind = OPERAND_LITERAL
		op.Value, op.Negative, err = ParseLiteral(word)
	}

	return
}

// SplitOperands splits a comma joined operand list, trimming each operand.
func SplitOperands(text string) (words []string, err error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	words = strings.Split(text, ",")
	if len(words) > MAX_OPERANDS {
		err = ErrOpcodeExtraArgs
		return
	}

	for n, word := range words {
		words[n] = strings.TrimSpace(word)
		if len(words[n]) == 0 {
			err = ErrOperandEmpty
			return
		}
	}

	return
}

// ParseOperands splits and parses an operand list.
func ParseOperands(text string) (ops []Operand, err error) {
	words, err := SplitOperands(text)
	if err != nil {
		return
	}

	for _, word := range words {
		var op Operand
		op, err = ParseOperand(word)
		if err != nil {
			err = fmt.Errorf("%v: %w", word, err)
			return
		}
		ops = append(ops, op)
	}

	return
}
