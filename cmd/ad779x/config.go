package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/blob/loader/file"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
)

var settings *config.Config

const defaultConfigFile = "ad779x.json"

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"config":       "config.file",
	"spi":          "spi",
	"cs":           "cs.pin",
	"cs-chip":      "cs.chip",
	"cs-line":      "cs.line",
	"cs-tied":      "cs.tied",
	"variant":      "variant",
	"ref":          "ref",
	"table":        "table",
	"formula":      "formula",
	"poll-timeout": "poll.timeout",
	"verify-id":    "verify.id",
	"log-level":    "log.level",
	"interval":     "interval",
	"count":        "count",
}

// loadConfig layers explicitly set flags over AD779X_ environment variables,
// a JSON config file and the defaults below. The file named by config.file
// must exist; the default ad779x.json is optional.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	defaultConfig := map[string]interface{}{
		"spi":          "",
		"cs.pin":       "",
		"cs.chip":      "",
		"cs.line":      0,
		"cs.tied":      false,
		"variant":      "ad7794",
		"ref":          5100000,
		"table":        "pt1000",
		"formula":      "unipolar",
		"poll.timeout": "0s",
		"verify.id":    false,
		"log.level":    "info",
		"interval":     "1s",
		"count":        1,
	}
	def := dict.New(dict.WithMap(defaultConfig))

	overrides := map[string]interface{}{}
	flags.Visit(func(f *pflag.Flag) {
		if k, ok := flagKeys[f.Name]; ok {
			overrides[k] = f.Value.String()
		}
	})

	// highest priority sources first - flags override environment
	cfg := config.New(
		dict.New(dict.WithMap(overrides)),
		env.New(env.WithEnvPrefix("AD779X_")),
		config.WithDefault(def))

	path, explicit := defaultConfigFile, false
	if v, err := cfg.Get("config.file"); err == nil {
		path, explicit = v.String(), true
	}
	var loadErr error
	cfg.Append(blob.New(file.New(path), json.NewDecoder(),
		blob.WithErrorHandler(func(err error) {
			var pe *os.PathError
			if !explicit && errors.As(err, &pe) {
				return
			}
			loadErr = err
		})))
	if loadErr != nil {
		return nil, fmt.Errorf("config file %s: %w", path, loadErr)
	}
	return cfg.GetConfig("", config.WithMust), nil
}
