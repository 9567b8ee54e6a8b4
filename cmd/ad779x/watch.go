package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the temperature at a fixed interval until interrupted",
	Args:  cobra.NoArgs,
	RunE:  watch,
}

func init() {
	watchCmd.Flags().DurationP("interval", "i", 0, "time between readings")
	rootCmd.AddCommand(watchCmd)
}

func watch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, closer, err := initDevice(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	ch, err := d.SenseContinuous(settings.MustGet("interval").Duration())
	if err != nil {
		return err
	}
	defer d.Halt()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping")
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Println(e.Temperature)
		}
	}
}
