package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console provides line oriented decimal and character I/O over byte streams.
type Console struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	source io.Reader
}

// Rewind drops any buffered input.
func (con *Console) Rewind() {
	con.reader = nil
	con.source = nil
}

// ReadUint reads one line of input as an unsigned decimal number.
func (con *Console) ReadUint() (value uint64, err error) {
	if con.reader == nil || con.source != con.Input {
		con.reader = bufio.NewReader(con.Input)
		con.source = con.Input
	}

	line, err := con.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || len(line) == 0 {
			err = ErrInputEnd
			return
		}
		err = nil
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	line = strings.TrimLeft(line, " \t")

	if strings.HasPrefix(line, "-") {
		err = ErrInputNegative
		return
	}

	value, err = strconv.ParseUint(line, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			err = ErrInputRange
		} else {
			err = ErrInputInvalid(line)
		}
		return
	}

	return
}

// WriteUint writes an unsigned decimal number followed by a newline.
func (con *Console) WriteUint(value uint64) (err error) {
	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	return
}

// WriteChar writes the low byte of a value.
func (con *Console) WriteChar(value uint64) (err error) {
	_, err = con.Output.Write([]byte{byte(value)})
	return
}

// DecimalInput returns a read-only port of decimal lines.
func (con *Console) DecimalInput() Port {
	return &consolePort{
		con:     con,
		receive: con.ReadUint,
	}
}

// DecimalOutput returns a write-only port of decimal lines.
func (con *Console) DecimalOutput() Port {
	return &consolePort{
		con:  con,
		send: con.WriteUint,
	}
}

// CharOutput returns a write-only port of characters.
func (con *Console) CharOutput() Port {
	return &consolePort{
		con:  con,
		send: con.WriteChar,
	}
}

// consolePort adapts one direction of a Console to a Port.
type consolePort struct {
	con     *Console
	receive func() (uint64, error)
	send    func(value uint64) error
}

var _ Port = (*consolePort)(nil)

func (cp *consolePort) Rewind() {
	cp.con.Rewind()
}

func (cp *consolePort) Receive() (value uint64, err error) {
	if cp.receive == nil {
		err = ErrPortWriteOnly
		return
	}
	return cp.receive()
}

func (cp *consolePort) Send(value uint64) (err error) {
	if cp.send == nil {
		err = ErrPortReadOnly
		return
	}
	return cp.send(value)
}
