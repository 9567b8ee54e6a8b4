//go:build linux

package ad779x

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LineSelect drives an active-low chip select through a GPIO character
// device line.
type LineSelect struct {
	*gpiocdev.Line
}

// RequestLineSelect requests offset on chip as an output held inactive
// (high).
func RequestLineSelect(chip string, offset int) (*LineSelect, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(1),
		gpiocdev.WithConsumer("ad779x-cs"))
	if err != nil {
		return nil, fmt.Errorf("ad779x: request cs line %s:%d: %w", chip, offset, err)
	}
	return &LineSelect{l}, nil
}

func (l *LineSelect) Select(active bool) error {
	if active {
		return l.SetValue(0)
	}
	return l.SetValue(1)
}

var _ ChipSelect = &LineSelect{}
