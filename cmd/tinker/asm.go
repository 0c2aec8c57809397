package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/ezrec/tinker/cpu"
	"github.com/ezrec/tinker/emulator"
	"github.com/ezrec/tinker/tko"
	"github.com/ezrec/tinker/translate"
)

var asmFlags struct {
	defines  []string
	dump     bool
	codeBase uint64
	dataBase uint64
}

// asmCmd represents the asm command
var asmCmd = &cobra.Command{
	Use:   "asm SOURCE OUTPUT [LISTING]",
	Short: "Assemble a Tinker source file into a .tko image",
	Long: `Asm assembles SOURCE into the binary image OUTPUT. If LISTING is
given, the fully expanded program (macros lowered, labels replaced by
addresses) is also written there as assembler source.

On any error nothing is left behind at OUTPUT or LISTING.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing := ""
		if len(args) == 3 {
			listing = args[2]
		}
		return assemble(args[0], args[1], listing)
	},
}

func init() {
	flags := asmCmd.Flags()
	flags.StringArrayVarP(&asmFlags.defines, "define", "D", nil, "Predefine an equate, as NAME=VALUE")
	flags.BoolVar(&asmFlags.dump, "dump", false, "Dump labels and opcodes to stderr")
	flags.Uint64Var(&asmFlags.codeBase, "code-base", cpu.CODE_BASE, "Code region base address")
	flags.Uint64Var(&asmFlags.dataBase, "data-base", cpu.DATA_BASE, "Data region base address")

	rootCmd.AddCommand(asmCmd)
}

// parseSource assembles a source file.
func parseSource(source string) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{
		Verbose:  verbose,
		CodeBase: asmFlags.codeBase,
		DataBase: asmFlags.dataBase,
	}

	// Machine defines first, so the command line can override them.
	for key, value := range emulator.NewEmulator(0).Defines() {
		asm.Predefine(key, value)
	}
	for _, def := range asmFlags.defines {
		key, value, ok := strings.Cut(def, "=")
		if !ok || len(key) == 0 {
			err = translate.Error("-D %v: expected NAME=VALUE", def)
			return
		}
		asm.Predefine(key, value)
	}

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", source, err)
		return
	}

	return
}

// assemble a source file to an image, and optionally a listing.
func assemble(source string, output string, listing string) (err error) {
	prog, err := parseSource(source)
	if err != nil {
		return
	}

	if asmFlags.dump {
		pp.Fprintln(os.Stderr, prog.Labels.Map())
		pp.Fprintln(os.Stderr, prog.Opcodes)
		pp.Fprintln(os.Stderr, prog.Data)
	}

	err = tko.WriteFile(output, prog.Image())
	if err != nil {
		return
	}

	if len(listing) != 0 {
		err = writeListing(listing, prog)
		if err != nil {
			os.Remove(output)
			return
		}
	}

	return
}

// writeListing writes the program listing, removing it on failure.
func writeListing(path string, prog *cpu.Program) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	err = prog.WriteListing(ouf)
	return
}
