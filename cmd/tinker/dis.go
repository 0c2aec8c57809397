package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/tinker/cpu"
	"github.com/ezrec/tinker/tko"
)

// disCmd represents the dis command
var disCmd = &cobra.Command{
	Use:   "dis IMAGE",
	Short: "Disassemble a .tko image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := tko.ReadFile(args[0])
		if err != nil {
			return err
		}

		out := bufio.NewWriter(os.Stdout)
		err = disassemble(out, img)
		if ferr := out.Flush(); err == nil {
			err = ferr
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(disCmd)
}

// disassemble writes the code region as instructions and the data region as words.
func disassemble(w io.Writer, img *tko.Image) (err error) {
	_, err = fmt.Fprintf(w, ".code ; %#x\n", img.CodeBase)
	if err != nil {
		return
	}
	for n := 0; n+cpu.CODE_SIZE <= len(img.Code); n += cpu.CODE_SIZE {
		code := cpu.Code(binary.LittleEndian.Uint32(img.Code[n:]))
		_, err = fmt.Fprintf(w, "\t%-24v ; %#06x: %08x\n", code, img.CodeBase+uint64(n), uint32(code))
		if err != nil {
			return
		}
	}

	if len(img.Data) == 0 {
		return
	}

	_, err = fmt.Fprintf(w, ".data ; %#x\n", img.DataBase)
	if err != nil {
		return
	}
	for n := 0; n+cpu.DATA_SIZE <= len(img.Data); n += cpu.DATA_SIZE {
		value := binary.LittleEndian.Uint64(img.Data[n:])
		_, err = fmt.Fprintf(w, "\t%-24d ; %#06x\n", value, img.DataBase+uint64(n))
		if err != nil {
			return
		}
	}

	return
}
