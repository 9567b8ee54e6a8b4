package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read conversions and print code, resistance and temperature",
	Args:  cobra.NoArgs,
	RunE:  read,
}

func init() {
	readCmd.Flags().IntP("count", "n", 1, "number of conversions to read")
	rootCmd.AddCommand(readCmd)
}

func read(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, closer, err := initDevice(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	n := int(settings.MustGet("count").Int())
	for i := 0; i < n; i++ {
		code, err := d.Code(ctx)
		if err != nil {
			return err
		}
		r := d.Convert(code)
		t, err := d.Lookup(r)
		if err != nil {
			log.Warn().Err(err).Stringer("resistance", r).Msg("no temperature")
			fmt.Printf("code=0x%06x resistance=%s\n", uint32(code), r)
			continue
		}
		fmt.Printf("code=0x%06x resistance=%s temperature=%.3f°C\n", uint32(code), r, t)
	}
	return nil
}
