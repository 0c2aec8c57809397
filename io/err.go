package io

import (
	"errors"

	"github.com/ezrec/tinker/translate"
)

var f = translate.From

var (
	// Port errors
	ErrPortWriteOnly = errors.New(f("port is write only"))
	ErrPortReadOnly  = errors.New(f("port is read only"))
	ErrInputEnd      = errors.New(f("end of input"))
	ErrInputNegative = errors.New(f("input is negative"))
	ErrInputRange    = errors.New(f("input out of range"))
)

// ErrInputInvalid is returned for input that is not a decimal number.
type ErrInputInvalid string

func (err ErrInputInvalid) Error() string {
	return f("input '%v' is not an unsigned decimal number", string(err))
}
