package main

import (
	"os"

	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Write the configured calibration table as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(settings.MustGet("table").String())
		if err != nil {
			return err
		}
		return t.WriteCSV(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
