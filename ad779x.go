// Package ad779x drives the Analog Devices AD7793/AD7794 24-bit sigma-delta
// ADCs wired as a ratiometric RTD front end.
//
// Every transaction starts with a write to the communications register that
// chooses the register and direction of the transfer that follows. The
// driver resets the chip, writes a fixed mode/configuration/IO profile, then
// polls the status register until a conversion is ready and reads the 24-bit
// code. Codes are converted to resistance in fixed point and to temperature
// through an rtd.Table.
//
// Datasheets:
// https://www.analog.com/media/en/technical-documentation/data-sheets/AD7792_7793.pdf
// https://www.analog.com/media/en/technical-documentation/data-sheets/AD7794_7795.pdf
package ad779x

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/mikesmitty/ad779x/rtd"
)

// Timing holds the fixed waits of the protocol.
type Timing struct {
	// SelectSettle is waited after asserting and before releasing select.
	SelectSettle time.Duration
	// ResetSettle is waited after the reset sequence, before any further
	// communication.
	ResetSettle time.Duration
	// RegisterDelay follows each register write during Initialize.
	RegisterDelay time.Duration
	// PowerUp is waited after Initialize: oscillator start plus two
	// conversion cycles.
	PowerUp time.Duration
	// PollInterval is waited between status polls.
	PollInterval time.Duration
}

// DefaultTiming returns the waits used with the chip's 16.7Hz update rate.
func DefaultTiming() Timing {
	return Timing{
		SelectSettle:  defaultSelectSettle,
		ResetSettle:   defaultResetSettle,
		RegisterDelay: defaultRegisterDelay,
		PowerUp:       defaultPowerUp,
		PollInterval:  defaultPollInterval,
	}
}

// Opts holds various configuration options for the device
type Opts struct {
	Variant Variant
	// RefMilliohms is the full-scale reference of the ratiometric reference
	// resistor, in milliohms.
	RefMilliohms uint64
	Formula      Formula
	// Table maps resistance to temperature for Sense and Temperature.
	Table  rtd.Table
	Timing Timing
	// BusTimeout bounds each byte exchange on buses created by NewSPI.
	BusTimeout time.Duration
	// PollTimeout bounds the wait for a ready conversion in Code. Zero waits
	// as long as the context allows.
	PollTimeout time.Duration
	// VerifyID makes Initialize check the ID register against Variant.
	VerifyID bool
	// SelectTiedLow tells NewSPI that chip select is hard-wired low, so no
	// ChipSelect is needed.
	SelectTiedLow bool
	Logger        zerolog.Logger
}

func DefaultOptions() *Opts {
	return AD7794Options()
}

func AD7793Options() *Opts {
	return &Opts{
		Variant:      AD7793,
		RefMilliohms: DefaultRefMilliohms,
		Table:        rtd.PT1000(),
		Timing:       DefaultTiming(),
		BusTimeout:   defaultBusTimeout,
		Logger:       zerolog.Nop(),
	}
}

func AD7794Options() *Opts {
	o := AD7793Options()
	o.Variant = AD7794
	// The AD7794 settles faster after select.
	o.Timing.SelectSettle = 5 * time.Microsecond
	return o
}

// NewSPI connects to the chip on p in SPI mode 3 and drives select through
// cs. The port's own chip select is never used: it is released after every
// byte, while a transaction spans several. A nil cs is only accepted with
// Opts.SelectTiedLow.
func NewSPI(p spi.Port, cs ChipSelect, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if cs == nil && !opts.SelectTiedLow {
		return nil, fmt.Errorf("ad779x: %w", ErrNoChipSelect)
	}
	c, err := p.Connect(1*physic.MegaHertz, spi.Mode3|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("ad779x: %v", err)
	}
	d, err := New(NewSPIBus(c, cs, opts.BusTimeout), opts)
	if err != nil {
		return nil, err
	}
	d.name = fmt.Sprintf("%s{%s}", strings.ToLower(opts.Variant.String()), p)
	return d, nil
}

// New returns a Dev talking over bus. Call Initialize before reading.
func New(bus Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	prof, err := variantProfile(opts.Variant)
	if err != nil {
		return nil, fmt.Errorf("ad779x: %v", err)
	}
	if opts.RefMilliohms == 0 {
		return nil, errors.New("ad779x: zero reference resistance")
	}
	tbl, err := rtd.NewTable(opts.Table)
	if err != nil {
		return nil, fmt.Errorf("ad779x: %w", err)
	}
	d := &Dev{
		bus:   bus,
		opts:  *opts,
		prof:  prof,
		name:  strings.ToLower(opts.Variant.String()),
		log:   opts.Logger,
		sleep: time.Sleep,
		wait:  wait,
	}
	d.opts.Table = tbl
	return d, nil
}

// Dev is a handle to one AD7793/AD7794. All transactions are serialized.
type Dev struct {
	bus   Bus
	opts  Opts
	prof  profile
	name  string
	log   zerolog.Logger
	sleep func(time.Duration)
	// wait is a sleep that ends early with ctx.
	wait func(ctx context.Context, dur time.Duration) error

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func (d *Dev) String() string {
	return d.name
}

// Gain returns the PGA gain of the startup profile.
func (d *Dev) Gain() Gain {
	return d.prof.gain
}

// Initialize resets the chip and writes the startup profile: continuous
// conversion on the internal 64kHz clock, unipolar gain 4 with the input
// buffer on, and the excitation current routing. It returns once the power-up
// time has elapsed.
func (d *Dev) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.reset(); err != nil {
		return d.wrap(err)
	}

	if d.opts.VerifyID {
		id, err := d.id()
		if err != nil {
			return d.wrap(err)
		}
		if id&idMask != d.prof.id {
			return d.wrap(fmt.Errorf("%w: %#02x is not %v", ErrUnexpectedID, id, d.opts.Variant))
		}
	}

	err := d.session(func() error {
		writes := []struct {
			reg Register
			val []byte
		}{
			{RegMode, d.prof.mode.bytes()},
			{RegConfig, d.prof.config.bytes()},
			{RegIO, d.prof.io.bytes()},
		}
		for _, w := range writes {
			if err := d.writeReg(w.reg, w.val); err != nil {
				return err
			}
			d.sleep(d.opts.Timing.RegisterDelay)
		}
		return nil
	})
	if err != nil {
		return d.wrap(err)
	}
	d.log.Debug().
		Uint16("mode", uint16(d.prof.mode)).
		Uint16("config", uint16(d.prof.config)).
		Uint8("io", uint8(d.prof.io)).
		Msgf("%s: initialized", d.name)

	if err := d.wait(ctx, d.opts.Timing.PowerUp); err != nil {
		return d.wrap(err)
	}
	return nil
}

// Status is the decoded state of the status register.
type Status int

const (
	Ready Status = iota
	Busy
	Error
	NoReference
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Busy:
		return "busy"
	case Error:
		return "error"
	case NoReference:
		return "no reference"
	}
	return "Status(?)"
}

// Err returns the error matching a non-ready, non-busy status.
func (s Status) Err() error {
	switch s {
	case Error:
		return ErrChipError
	case NoReference:
		return ErrNoReference
	}
	return nil
}

// Status reads the status register in its own select session.
func (d *Dev) Status() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s Status
	err := d.session(func() (err error) {
		s, err = d.status()
		return err
	})
	if err != nil {
		return s, d.wrap(err)
	}
	return s, nil
}

// status reads and decodes the status register within a session. A busy
// conversion takes precedence over the error bits, since the data register is
// not valid until the conversion completes.
func (d *Dev) status() (Status, error) {
	b, err := d.readReg(RegStatus, 1)
	if err != nil {
		return Busy, err
	}
	s := decodeStatus(b[0], d.prof.refDetect)
	d.log.Debug().Uint8("status", b[0]).Stringer("decoded", s).Msgf("%s: status", d.name)
	return s, nil
}

func decodeStatus(b uint8, refDetect bool) Status {
	switch {
	case b&statusRDY != 0:
		return Busy
	case b&statusERR != 0:
		return Error
	case refDetect && b&statusNOXREF != 0:
		return NoReference
	}
	return Ready
}

// Code waits for a ready conversion and returns its 24-bit code.
//
// Select stays asserted while the status register is polled every
// PollInterval. The wait ends with the context or, if set, after PollTimeout;
// either returns ErrConversionTimeout joined with the last chip condition.
// Without either the wait is unbounded.
func (d *Dev) Code(ctx context.Context) (Code, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.code(ctx)
}

func (d *Dev) code(ctx context.Context) (Code, error) {
	if d.opts.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.PollTimeout)
		defer cancel()
	}

	var code Code
	err := d.session(func() error {
		for {
			s, err := d.status()
			if err != nil {
				return err
			}
			if s == Ready {
				break
			}
			if s != Busy {
				d.log.Warn().Stringer("status", s).Msgf("%s: conversion not ready", d.name)
			}
			if err := d.wait(ctx, d.opts.Timing.PollInterval); err != nil {
				return errors.Join(fmt.Errorf("%w: %v", ErrConversionTimeout, err), s.Err())
			}
		}
		b, err := d.readReg(RegData, 3)
		if err != nil {
			return err
		}
		code = codeFromBytes(b)
		return nil
	})
	if err != nil {
		return 0, d.wrap(err)
	}
	d.log.Debug().Uint32("code", uint32(code)).Msgf("%s: conversion", d.name)
	return code, nil
}

// Resistance reads one conversion and converts it with the configured
// formula.
func (d *Dev) Resistance(ctx context.Context) (Milliohms, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resistance(ctx)
}

func (d *Dev) resistance(ctx context.Context) (Milliohms, error) {
	code, err := d.code(ctx)
	if err != nil {
		return 0, err
	}
	r := d.Convert(code)
	d.log.Debug().Stringer("resistance", r).Msgf("%s: resistance", d.name)
	return r, nil
}

// Temperature reads one conversion and returns the temperature in °C.
func (d *Dev) Temperature(ctx context.Context) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.temperature(ctx)
}

func (d *Dev) temperature(ctx context.Context) (float64, error) {
	r, err := d.resistance(ctx)
	if err != nil {
		return 0, err
	}
	return d.Lookup(r)
}

// Convert turns a raw code into a resistance with the configured formula,
// gain and reference.
func (d *Dev) Convert(code Code) Milliohms {
	return d.opts.Formula.convert(code, d.prof.gain, d.opts.RefMilliohms)
}

// Lookup maps a resistance to °C through the configured table.
func (d *Dev) Lookup(r Milliohms) (float64, error) {
	t, err := d.opts.Table.Temperature(r.Ohms())
	if err != nil {
		return 0, d.wrap(err)
	}
	return t, nil
}

// ID reads the ID register.
func (d *Dev) ID() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.id()
	if err != nil {
		return 0, d.wrap(err)
	}
	return id, nil
}

func (d *Dev) id() (uint8, error) {
	var id uint8
	err := d.session(func() error {
		b, err := d.readReg(RegID, 1)
		if err != nil {
			return err
		}
		id = b[0]
		return nil
	})
	return id, err
}

// Registers reads every register except Data, whose read would consume a
// pending conversion.
func (d *Dev) Registers() (map[Register][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := make(map[Register][]byte, len(Registers))
	for _, reg := range Registers {
		if reg == RegData {
			continue
		}
		reg := reg
		err := d.session(func() error {
			b, err := d.readReg(reg, reg.Size())
			regs[reg] = b
			return err
		})
		if err != nil {
			return nil, d.wrap(err)
		}
	}
	return regs, nil
}

// Sense reads one conversion and reports it as temperature.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return d.wrap(errors.New("already sensing continuously"))
	}
	return d.sense(context.Background(), e)
}

func (d *Dev) sense(ctx context.Context, e *physic.Env) error {
	t, err := d.temperature(ctx)
	if err != nil {
		return err
	}
	e.Temperature = physic.Temperature(t*1000)*physic.MilliCelsius + physic.ZeroCelsius
	return nil
}

// SenseContinuous returns measurements as °C on a continuous basis.
//
// The application must call Halt() to stop the sensing when done to stop the
// sensor and close the channel.
//
// It's the responsibility of the caller to retrieve the values from the
// channel as fast as possible, otherwise the interval may not be respected.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval <= 0 {
		return nil, d.wrap(errors.New("sensing interval must be positive"))
	}
	// The sensing goroutine takes mu, so it must not be held while waiting
	// for a previous one to exit. Another caller may start one in between.
	d.mu.Lock()
	for d.stop != nil {
		d.mu.Unlock()
		d.Halt()
		d.mu.Lock()
	}
	defer d.mu.Unlock()

	sensing := make(chan physic.Env)
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer d.wg.Done()
		defer close(sensing)
		d.sensingContinuous(interval, sensing, stop)
	}(d.stop)
	return sensing, nil
}

// Precision is nominal; noise and RTD non-linearity dominate the 24-bit code
// step.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 256
}

// Halt stops continuous sensing started by SenseContinuous().
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.stop == nil {
		d.mu.Unlock()
		return nil
	}
	close(d.stop)
	d.stop = nil
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

func (d *Dev) sensingContinuous(interval time.Duration, sensing chan<- physic.Env, stop <-chan struct{}) {
	// A conversion takes at least one poll interval.
	if interval < d.opts.Timing.PollInterval {
		interval = d.opts.Timing.PollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		e := physic.Env{}
		d.mu.Lock()
		err := d.sense(ctx, &e)
		d.mu.Unlock()
		if err != nil {
			d.log.Error().Err(err).Msgf("%s: continuous sensing stopped", d.name)
			return
		}
		select {
		case sensing <- e:
		case <-stop:
			return
		}
		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}

// wait sleeps for dur unless ctx ends first.
func wait(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dur <= 0 {
		return nil
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("%s: %w", d.name, err)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
