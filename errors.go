package ad779x

import "errors"

var (
	// ErrBusTimeout is returned when a byte exchange does not complete within
	// the bus timeout. The in-flight transaction is abandoned.
	ErrBusTimeout = errors.New("bus timeout")

	// ErrChipError reports the status register ERR bit: the data register is
	// all zeros or all ones (over/under range, or a missing reference).
	ErrChipError = errors.New("chip error")

	// ErrNoReference reports the status register NOXREF bit.
	ErrNoReference = errors.New("no external reference")

	// ErrConversionTimeout is returned by Code when the poll deadline expires
	// before the chip reports a ready conversion.
	ErrConversionTimeout = errors.New("conversion timeout")

	// ErrNoChipSelect is returned by NewSPI when no chip select is given and
	// select is not declared tied low.
	ErrNoChipSelect = errors.New("no chip select")

	// ErrUnexpectedID is returned by Initialize when ID verification is on and
	// the ID register does not match the configured variant.
	ErrUnexpectedID = errors.New("unexpected chip id")
)
