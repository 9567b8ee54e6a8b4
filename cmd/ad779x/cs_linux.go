//go:build linux

package main

import "github.com/mikesmitty/ad779x"

func lineSelect(chip string, offset int) (ad779x.ChipSelect, func(), error) {
	l, err := ad779x.RequestLineSelect(chip, offset)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { l.Close() }, nil
}
