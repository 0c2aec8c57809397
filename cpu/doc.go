// Package cpu implements the Tinker register machine and its assembler.
//
// The machine has 32 general-purpose 64-bit registers (r0-r31, none of them
// hardwired), a program counter, and a flat byte addressable memory. Every
// instruction is a single 32-bit word:
//
//	<opcode:5><rd:5><rs:5><rt:5><imm:12>
//
// The immediate is stored unsigned; whether it is sign-extended is decided by
// the operation that consumes it.
//
// The assembler is a two-pass assembler. The first pass assigns every entry
// an address in either the code or the data region and binds labels. Macro
// pseudo-instructions are then expanded into ordinary instructions, label
// references are substituted with their resolved addresses, and the result is
// encoded into a binary image (see package tko).
package cpu
