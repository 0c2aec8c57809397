package cpu

// Mnemonic is the static description of an assembler mnemonic.
type Mnemonic struct {
	Name      string // Source name.
	Op        Op     // Base opcode; aliased mnemonics select a variant from it.
	Operands  int    // Required number of operands.
	Immediate bool   // Last operand is an unsigned literal.
	Words     int    // Instruction words occupied once lowered.
	Macro     bool   // Pseudo-instruction, lowered by Expand.
}

// Size returns the number of code bytes reserved for the mnemonic.
func (mn Mnemonic) Size() uint64 {
	return uint64(mn.Words) * CODE_SIZE
}

var mnemonicTable = map[string]Mnemonic{
	"and":    {Op: OP_AND, Operands: 3, Words: 1},
	"or":     {Op: OP_OR, Operands: 3, Words: 1},
	"xor":    {Op: OP_XOR, Operands: 3, Words: 1},
	"not":    {Op: OP_NOT, Operands: 2, Words: 1},
	"shftr":  {Op: OP_SHFTR, Operands: 3, Words: 1},
	"shftri": {Op: OP_SHFTRI, Operands: 2, Immediate: true, Words: 1},
	"shftl":  {Op: OP_SHFTL, Operands: 3, Words: 1},
	"shftli": {Op: OP_SHFTLI, Operands: 2, Immediate: true, Words: 1},
	"br":     {Op: OP_BR, Operands: 1, Words: 1},
	"brr":    {Op: OP_BRR, Operands: 1, Words: 1},
	"brnz":   {Op: OP_BRNZ, Operands: 2, Words: 1},
	"call":   {Op: OP_CALL, Operands: 1, Words: 1},
	"return": {Op: OP_RETURN, Operands: 0, Words: 1},
	"brgt":   {Op: OP_BRGT, Operands: 3, Words: 1},
	"priv":   {Op: OP_PRIV, Operands: 4, Immediate: true, Words: 1},
	"mov":    {Op: OP_MOV_LOAD, Operands: 2, Words: 1},
	"addf":   {Op: OP_ADDF, Operands: 3, Words: 1},
	"subf":   {Op: OP_SUBF, Operands: 3, Words: 1},
	"mulf":   {Op: OP_MULF, Operands: 3, Words: 1},
	"divf":   {Op: OP_DIVF, Operands: 3, Words: 1},
	"add":    {Op: OP_ADD, Operands: 3, Words: 1},
	"addi":   {Op: OP_ADDI, Operands: 2, Immediate: true, Words: 1},
	"sub":    {Op: OP_SUB, Operands: 3, Words: 1},
	"subi":   {Op: OP_SUBI, Operands: 2, Immediate: true, Words: 1},
	"mul":    {Op: OP_MUL, Operands: 3, Words: 1},
	"div":    {Op: OP_DIV, Operands: 3, Words: 1},

	// Macros
	"in":   {Op: OP_PRIV, Operands: 2, Words: 1, Macro: true},
	"out":  {Op: OP_PRIV, Operands: 2, Words: 1, Macro: true},
	"clr":  {Op: OP_XOR, Operands: 1, Words: 1, Macro: true},
	"halt": {Op: OP_PRIV, Operands: 0, Words: 1, Macro: true},
	"push": {Op: OP_MOV_STORE, Operands: 1, Words: 2, Macro: true},
	"pop":  {Op: OP_MOV_LOAD, Operands: 1, Words: 2, Macro: true},
	"ld":   {Op: OP_ADDI, Operands: 2, Immediate: true, Words: 12, Macro: true},
}

func init() {
	for name, mn := range mnemonicTable {
		mn.Name = name
		mnemonicTable[name] = mn
	}
}

// LookupMnemonic returns the table entry for a mnemonic.
func LookupMnemonic(name string) (mn Mnemonic, ok bool) {
	mn, ok = mnemonicTable[name]
	return
}
