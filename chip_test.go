package ad779x

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeChip simulates the serial interface of an AD7793/AD7794. It decodes
// command bytes, tracks payload lengths per register, counts runs of ones
// for the interface reset and records everything it sees.
type fakeChip struct {
	mu sync.Mutex

	selected bool
	selects  []bool
	tx       []byte
	// txSelected is false for any byte exchanged while deselected.
	txSelected []bool

	regs     map[Register][]byte
	writes   []write
	statuses []byte
	resets   int
	ones     int

	cmd     Command
	pending int
	buf     []byte

	// failAfter makes Exchange fail once this many bytes have been seen.
	failAfter int
	failErr   error
	selErr    error
}

type write struct {
	reg     Register
	payload []byte
}

func newFakeChip() *fakeChip {
	return &fakeChip{
		regs: map[Register][]byte{
			RegMode:      {0x00, 0x0A},
			RegConfig:    {0x07, 0x10},
			RegData:      {0x00, 0x00, 0x00},
			RegID:        {0x4F},
			RegIO:        {0x00},
			RegOffset:    {0x80, 0x00, 0x00},
			RegFullScale: {0x50, 0x00, 0x00},
		},
		failAfter: -1,
	}
}

func (c *fakeChip) Select(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selErr != nil {
		return c.selErr
	}
	c.selected = active
	c.selects = append(c.selects, active)
	return nil
}

func (c *fakeChip) Exchange(tx byte) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAfter >= 0 && len(c.tx) >= c.failAfter {
		return 0, c.failErr
	}
	c.tx = append(c.tx, tx)
	c.txSelected = append(c.txSelected, c.selected)
	if !c.selected {
		return 0xFF, nil
	}

	if c.pending > 0 {
		c.pending--
		if c.cmd.Read {
			b := c.buf[0]
			c.buf = c.buf[1:]
			return b, nil
		}
		c.buf = append(c.buf, tx)
		if c.pending == 0 {
			c.regs[c.cmd.Reg] = c.buf
			c.writes = append(c.writes, write{c.cmd.Reg, c.buf})
		}
		return 0xFF, nil
	}

	if tx == 0xFF {
		c.ones++
		if c.ones == resetLen {
			c.resets++
			c.ones = 0
		}
		return 0xFF, nil
	}
	c.ones = 0

	cmd, err := DecodeCommand(tx)
	if err != nil {
		return 0xFF, err
	}
	c.cmd = cmd
	c.pending = cmd.Reg.Size()
	if cmd.Read {
		c.buf = append([]byte(nil), c.read(cmd.Reg)...)
	} else {
		c.buf = nil
	}
	return 0xFF, nil
}

func (c *fakeChip) read(reg Register) []byte {
	if reg != RegStatus {
		return c.regs[reg]
	}
	if len(c.statuses) == 0 {
		return []byte{0x08}
	}
	s := c.statuses[0]
	if len(c.statuses) > 1 {
		c.statuses = c.statuses[1:]
	}
	return []byte{s}
}

// sleeps records requested delays without sleeping. Context waits are
// recorded separately and only really wait when timed is set.
type sleeps struct {
	mu    sync.Mutex
	d     []time.Duration
	waits []time.Duration
	timed bool
}

func (s *sleeps) sleep(d time.Duration) {
	s.mu.Lock()
	s.d = append(s.d, d)
	s.mu.Unlock()
}

func (s *sleeps) wait(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	timed := s.timed
	s.mu.Unlock()
	if timed {
		return wait(ctx, d)
	}
	return ctx.Err()
}

var errBus = errors.New("bus fault")

func newTestDev(c *fakeChip, opts *Opts) (*Dev, *sleeps) {
	if opts == nil {
		opts = AD7794Options()
		opts.Timing = Timing{}
	}
	d, err := New(c, opts)
	if err != nil {
		panic(err)
	}
	s := &sleeps{}
	d.sleep = s.sleep
	d.wait = s.wait
	return d, s
}
