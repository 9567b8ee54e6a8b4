package main

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Dump the chip registers",
	Args:  cobra.NoArgs,
	RunE:  regs,
}

func init() {
	rootCmd.AddCommand(regsCmd)
}

func regs(cmd *cobra.Command, args []string) error {
	d, closer, err := initDevice(context.Background())
	if err != nil {
		return err
	}
	defer closer.Close()

	r, err := d.Registers()
	if err != nil {
		return err
	}
	spew.Dump(r)
	return nil
}
