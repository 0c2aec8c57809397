package main

import (
	"bufio"
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/tinker/emulator"
	"github.com/ezrec/tinker/tko"
)

var simFlags struct {
	memory uint
	source bool
}

// simCmd represents the sim command
var simCmd = &cobra.Command{
	Use:   "sim IMAGE",
	Short: "Run a .tko image",
	Long: `Sim loads IMAGE into a fresh machine and runs it until it halts.

Decimal input is read from stdin one line at a time; program output
goes to stdout. With --source, IMAGE is assembled first, and runtime
errors report the source line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulate(args[0])
	},
}

func init() {
	flags := simCmd.Flags()
	flags.UintVarP(&simFlags.memory, "memory", "m", emulator.MEM_SIZE, "Memory size in bytes")
	flags.BoolVarP(&simFlags.source, "source", "s", false, "IMAGE is assembler source")

	rootCmd.AddCommand(simCmd)
}

// simulate runs an image, or a source file, to completion.
func simulate(path string) (err error) {
	emu := emulator.NewEmulator(simFlags.memory)
	emu.Verbose = verbose

	stdout := bufio.NewWriter(os.Stdout)
	emu.Console.Input = os.Stdin
	emu.Console.Output = stdout

	// Program output already produced is kept, even on error.
	defer func() {
		ferr := stdout.Flush()
		if err == nil {
			err = ferr
		}
	}()

	if simFlags.source {
		prog, perr := parseSource(path)
		if perr != nil {
			return perr
		}
		err = emu.LoadProgram(prog)
	} else {
		img, rerr := tko.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		err = emu.Load(img)
	}
	if err != nil {
		return
	}

	err = emu.Run()

	var runtime *emulator.ErrRuntime
	if verbose && errors.As(err, &runtime) {
		log.Printf("state at fault:\n%v", emu.Cpu)
	}

	if verbose {
		log.Printf("%v ticks", emu.Ticks())
	}

	return
}
