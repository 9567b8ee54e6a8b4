package ad779x

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Bus is the byte-level link to the chip.
//
// Exchange clocks one byte out and returns the byte clocked in during the same
// transfer. Select drives the active-low chip select line; active=true pulls
// it low.
type Bus interface {
	Exchange(tx byte) (byte, error)
	Select(active bool) error
}

// ChipSelect drives a chip select line.
type ChipSelect interface {
	Select(active bool) error
}

// PinSelect drives an active-low chip select through a periph GPIO pin.
type PinSelect struct {
	Pin gpio.PinOut
}

func (p PinSelect) Select(active bool) error {
	if active {
		return p.Pin.Out(gpio.Low)
	}
	return p.Pin.Out(gpio.High)
}

// SPIBus is a Bus over a periph SPI connection with a separately driven chip
// select, so that select stays asserted across many single-byte transfers.
type SPIBus struct {
	c       conn.Conn
	cs      ChipSelect
	timeout time.Duration
}

// NewSPIBus returns a Bus exchanging bytes over c. A nil cs leaves selection
// to the wiring (CS tied low). A zero timeout disables the bus timeout.
func NewSPIBus(c conn.Conn, cs ChipSelect, timeout time.Duration) *SPIBus {
	return &SPIBus{c: c, cs: cs, timeout: timeout}
}

func (b *SPIBus) String() string {
	return b.c.String()
}

// Exchange performs one full-duplex single byte transfer.
//
// The connection cannot be interrupted, so on timeout the transfer goroutine
// is left to finish on its own and the connection should be considered
// unusable.
func (b *SPIBus) Exchange(tx byte) (byte, error) {
	if b.timeout <= 0 {
		return b.tx(tx)
	}

	type result struct {
		rx  byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		rx, err := b.tx(tx)
		done <- result{rx, err}
	}()

	t := time.NewTimer(b.timeout)
	defer t.Stop()
	select {
	case res := <-done:
		return res.rx, res.err
	case <-t.C:
		return 0, fmt.Errorf("%w after %s", ErrBusTimeout, b.timeout)
	}
}

func (b *SPIBus) tx(tx byte) (byte, error) {
	w := [1]byte{tx}
	var r [1]byte
	err := b.c.Tx(w[:], r[:])
	return r[0], err
}

func (b *SPIBus) Select(active bool) error {
	if b.cs == nil {
		return nil
	}
	return b.cs.Select(active)
}

var _ Bus = &SPIBus{}
