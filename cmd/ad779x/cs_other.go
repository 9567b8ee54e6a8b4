//go:build !linux

package main

import (
	"errors"

	"github.com/mikesmitty/ad779x"
)

func lineSelect(chip string, offset int) (ad779x.ChipSelect, func(), error) {
	return nil, nil, errors.New("GPIO character devices are only available on linux")
}
