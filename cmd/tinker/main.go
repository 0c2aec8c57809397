// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command tinker assembles, runs and disassembles Tinker programs.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tinker",
	Short: "Tinker assembler and simulator",
	Long: `Tinker is a toolchain for the Tinker instruction set: a two pass
assembler producing .tko binary images, a simulator that executes them,
and a disassembler for inspecting them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("tinker: ")

	err := rootCmd.Execute()
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}
}
