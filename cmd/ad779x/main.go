// ad779x reads an RTD through an AD7793/AD7794 on an SPI port.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "undefined"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

var rootCmd = &cobra.Command{
	Use:               "ad779x",
	Short:             "ad779x reads RTD temperature through an AD7793/AD7794 ADC",
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "JSON config file")
	pf.StringP("spi", "s", "", "name of the SPI port")
	pf.String("cs", "", "name of a GPIO pin driving chip select")
	pf.String("cs-chip", "", "GPIO character device driving chip select (linux)")
	pf.Int("cs-line", 0, "line offset on --cs-chip")
	pf.Bool("cs-tied", false, "chip select is hard-wired low")
	pf.StringP("variant", "v", "", "chip variant (ad7793 or ad7794)")
	pf.Int("ref", 0, "full-scale reference in milliohms")
	pf.StringP("table", "t", "", "calibration table: pt100, pt1000 or a CSV file")
	pf.String("formula", "", "code conversion formula (unipolar or bipolar)")
	pf.Duration("poll-timeout", 0, "limit on the wait for a conversion (0 waits forever)")
	pf.Bool("verify-id", false, "check the ID register during initialization")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logErr(rootCmd, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	settings = cfg
	lvl, err := zerolog.ParseLevel(settings.MustGet("log.level").String())
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log = log.Level(lvl)
	return nil
}

func logErr(cmd *cobra.Command, err error) {
	log.Error().Err(err).Msgf("ad779x %s", cmd.Name())
}
