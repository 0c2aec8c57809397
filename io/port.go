// Package io provides the I/O ports of the Tinker simulator.
//
// Ports are addressed by number from the priv instruction. The console
// provides a decimal input port, a decimal output port, and a character
// output port, all backed by byte streams.
package io

// Port is a word oriented I/O device.
type Port interface {
	// Rewind resets the port to its initial state.
	Rewind()
	// Receive reads the next word from the port.
	Receive() (value uint64, err error)
	// Send writes a word to the port.
	Send(value uint64) error
}
