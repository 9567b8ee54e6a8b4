package ad779x

import (
	"errors"
	"fmt"
)

// exchange clocks one byte each way. Every byte sent is paired with the byte
// received in the same transfer; the chip's interface relies on it.
func (d *Dev) exchange(tx byte) (byte, error) {
	return d.bus.Exchange(tx)
}

// session runs fn with chip select asserted and always releases it, joining
// any release error with fn's.
func (d *Dev) session(fn func() error) error {
	if err := d.bus.Select(true); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	d.sleep(d.opts.Timing.SelectSettle)
	err := fn()
	d.sleep(d.opts.Timing.SelectSettle)
	if rerr := d.bus.Select(false); rerr != nil {
		err = errors.Join(err, fmt.Errorf("deselect: %w", rerr))
	}
	return err
}

// reset clocks 32 ones into the chip, returning its serial interface and
// registers to their power-on state. The sequence must not be shortened.
func (d *Dev) reset() error {
	err := d.session(func() error {
		for i := 0; i < resetLen; i++ {
			if _, err := d.exchange(fillByte); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.sleep(d.opts.Timing.ResetSettle)
	return nil
}

// writeReg writes payload to reg within an already selected session.
func (d *Dev) writeReg(reg Register, payload []byte) error {
	cmd := Command{Reg: reg}
	if _, err := d.exchange(cmd.Encode()); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	for _, b := range payload {
		if _, err := d.exchange(b); err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
	}
	return nil
}

// readReg reads n bytes from reg within an already selected session.
func (d *Dev) readReg(reg Register, n int) ([]byte, error) {
	cmd := Command{Read: true, Reg: reg}
	if _, err := d.exchange(cmd.Encode()); err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	b := make([]byte, n)
	for i := range b {
		rx, err := d.exchange(fillByte)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		b[i] = rx
	}
	return b, nil
}

// WriteRegister writes payload to reg in its own select session.
func (d *Dev) WriteRegister(reg Register, payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.session(func() error { return d.writeReg(reg, payload) }); err != nil {
		return d.wrap(err)
	}
	return nil
}

// ReadRegister reads n bytes from reg in its own select session. The bytes
// are returned in transfer order, most significant first.
func (d *Dev) ReadRegister(reg Register, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b []byte
	err := d.session(func() (err error) {
		b, err = d.readReg(reg, n)
		return err
	})
	if err != nil {
		return nil, d.wrap(err)
	}
	return b, nil
}

// Reset resets the chip's serial interface and registers.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reset(); err != nil {
		return d.wrap(err)
	}
	return nil
}
