package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mikesmitty/ad779x"
	"github.com/mikesmitty/ad779x/rtd"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// options builds driver options from settings.
func options() (*ad779x.Opts, error) {
	var opts *ad779x.Opts
	switch v := strings.ToLower(settings.MustGet("variant").String()); v {
	case "ad7793":
		opts = ad779x.AD7793Options()
	case "ad7794":
		opts = ad779x.AD7794Options()
	default:
		return nil, fmt.Errorf("invalid variant: %q", v)
	}

	switch f := strings.ToLower(settings.MustGet("formula").String()); f {
	case "unipolar":
		opts.Formula = ad779x.FormulaUnipolar
	case "bipolar":
		opts.Formula = ad779x.FormulaBipolar
	default:
		return nil, fmt.Errorf("invalid formula: %q", f)
	}

	ref := settings.MustGet("ref").Int()
	if ref <= 0 {
		return nil, fmt.Errorf("invalid reference: %d", ref)
	}
	opts.RefMilliohms = uint64(ref)

	tbl, err := loadTable(settings.MustGet("table").String())
	if err != nil {
		return nil, err
	}
	opts.Table = tbl
	opts.PollTimeout = settings.MustGet("poll.timeout").Duration()
	opts.VerifyID = settings.MustGet("verify.id").Bool()
	opts.SelectTiedLow = settings.MustGet("cs.tied").Bool()
	opts.Logger = log
	return opts, nil
}

func loadTable(name string) (rtd.Table, error) {
	switch strings.ToLower(name) {
	case "pt100":
		return rtd.PT100(), nil
	case "pt1000":
		return rtd.PT1000(), nil
	}
	return rtd.LoadCSV(name)
}

// openDevice opens the SPI port and chip select named in settings. The
// returned closer releases both.
func openDevice() (*ad779x.Dev, io.Closer, error) {
	opts, err := options()
	if err != nil {
		return nil, nil, err
	}
	if err := checkChipSelect(); err != nil {
		return nil, nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	port, err := spireg.Open(settings.MustGet("spi").String())
	if err != nil {
		return nil, nil, err
	}

	cs, csClose, err := chipSelect()
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	closer := closerFunc(func() error {
		csClose()
		return port.Close()
	})

	d, err := ad779x.NewSPI(port, cs, opts)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	log.Debug().Stringer("dev", d).Msg("opened")
	return d, closer, nil
}

// checkChipSelect fails unless some chip select is configured. The port's own
// select cannot hold across a multi-byte transaction.
func checkChipSelect() error {
	if settings.MustGet("cs.chip").String() != "" ||
		settings.MustGet("cs.pin").String() != "" ||
		settings.MustGet("cs.tied").Bool() {
		return nil
	}
	return errors.New("no chip select: set --cs, --cs-chip or --cs-tied")
}

func chipSelect() (ad779x.ChipSelect, func(), error) {
	if chip := settings.MustGet("cs.chip").String(); chip != "" {
		return lineSelect(chip, int(settings.MustGet("cs.line").Int()))
	}
	name := settings.MustGet("cs.pin").String()
	if name == "" {
		return nil, func() {}, checkChipSelect()
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, nil, fmt.Errorf("unknown cs pin %q", name)
	}
	s := ad779x.PinSelect{Pin: p}
	if err := s.Select(false); err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

// initDevice opens and initializes the device.
func initDevice(ctx context.Context) (*ad779x.Dev, io.Closer, error) {
	d, closer, err := openDevice()
	if err != nil {
		return nil, nil, err
	}
	if err := d.Initialize(ctx); err != nil {
		closer.Close()
		return nil, nil, err
	}
	log.Info().Stringer("dev", d).Msg("initialized")
	return d, closer, nil
}
