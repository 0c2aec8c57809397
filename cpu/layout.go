package cpu

const (
	CODE_BASE = 0x2000     // Base address of the code region.
	DATA_BASE = 0x1_0000   // Base address of the data region.
	MEM_SIZE  = 512 * 1024 // Default simulator memory size.
)
