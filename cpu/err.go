package cpu

import (
	"errors"

	"github.com/ezrec/tinker/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted          = errors.New(f("halted"))
	ErrMemoryBounds    = errors.New(f("memory access out of bounds"))
	ErrTargetBounds    = errors.New(f("branch target out of bounds"))
	ErrRegisterIndex   = errors.New(f("register index invalid"))
	ErrDivideByZero    = errors.New(f("divide by zero"))
	ErrPrivInvalid     = errors.New(f("privileged operation invalid"))
	ErrPortInvalid     = errors.New(f("port invalid"))
	ErrImageTooLarge   = errors.New(f("image does not fit in memory"))
	ErrOpcodeUndefined = errors.New(f("opcode undefined"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrLabelUnbound       = errors.New(f("label not followed by code or data"))
	ErrLabelUnresolved    = errors.New(f("label reference not substituted"))
	ErrSectionInvalid     = errors.New(f("section invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissingArgs  = errors.New(f("too few arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeValueExtra   = errors.New(f("value not expected"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandEmpty       = errors.New(f("operand empty"))
	ErrOperandShape       = errors.New(f("operand shape invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrMemoryInvalid      = errors.New(f("memory operand invalid"))
	ErrAddressingMode     = errors.New(f("no addressing mode for operands"))
	ErrMacroSize          = errors.New(f("macro expansion size mismatch"))
	ErrMacroUnexpanded    = errors.New(f("macro not expanded"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode annotates an execution error with the faulting instruction word.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%08x %v", uint32(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrRange is returned when a literal does not fit in its immediate field.
type ErrRange struct {
	Literal string
	Min     int64
	Max     int64
}

func (err ErrRange) Error() string {
	return f("literal %v out of range [%d, %d]", err.Literal, err.Min, err.Max)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrMacro locates an error inside the expansion of a macro.
type ErrMacro struct {
	Macro string
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v %v", err.Macro, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
