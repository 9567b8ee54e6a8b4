package ad779x

import "time"

// Variant selects the chip family member and with it the startup profile.
type Variant int

const (
	AD7793 Variant = iota
	AD7794
)

func (v Variant) String() string {
	switch v {
	case AD7793:
		return "AD7793"
	case AD7794:
		return "AD7794"
	}
	return "Variant(?)"
}

// Gain is the 3-bit PGA field of the configuration register. The
// amplification factor is 1 << g.
type Gain uint8

const (
	Gain1 Gain = iota
	Gain2
	Gain4
	Gain8
	Gain16
	Gain32
	Gain64
	Gain128
)

// Factor returns the amplification factor.
func (g Gain) Factor() uint64 {
	return 1 << (g & 0x07)
}

// Formula selects how a conversion code is turned into resistance.
type Formula int

const (
	FormulaUnipolar Formula = iota
	FormulaBipolar
)

// Communications register bits.
const (
	commWEN  uint8 = 0x80
	commRead uint8 = 0x40

	commRegShift = 3
	commRegMask  = 0x07
)

// Status register bits.
const (
	statusRDY    uint8 = 0x80
	statusERR    uint8 = 0x40
	statusNOXREF uint8 = 0x20
)

// Mode register fields.
const (
	modeContinuous     ModeWord = 0x0000
	modeClkInternal64k ModeWord = 0x0000
	modeRate16_7Hz     ModeWord = 0x000A
)

// Configuration register fields.
const (
	configUnipolar  ConfigWord = 0x1000
	configGainShift            = 8
	configRefDetect ConfigWord = 0x0020
	configBuffered  ConfigWord = 0x0010
	configChAIN1    ConfigWord = 0x0000
	configChAIN3    ConfigWord = 0x0002
)

// IO register fields.
const (
	ioIexcToIOUT1 IOWord = 0x08
	ioIexcToIOUT2 IOWord = 0x0C
	ioIexc210uA   IOWord = 0x02
)

// ID register low nibbles.
const (
	idMask   uint8 = 0x0F
	idAD7793 uint8 = 0x0B
	idAD7794 uint8 = 0x0F
)

// fillByte is clocked out while reading; a run of them resets the interface.
const fillByte uint8 = 0xFF

// resetLen is the number of fill bytes (32 ones) that resets the interface.
const resetLen = 4

// CodeBits is the conversion width of the AD7793/AD7794.
const CodeBits = 24

// DefaultRefMilliohms is the full-scale reference of the 5.1 kΩ ratiometric
// reference resistor, in milliohms.
const DefaultRefMilliohms = 5_100_000

const (
	defaultSelectSettle  = 1 * time.Millisecond
	defaultResetSettle   = 10 * time.Millisecond
	defaultRegisterDelay = 1 * time.Millisecond
	defaultPowerUp       = 241 * time.Millisecond
	defaultPollInterval  = 240 * time.Millisecond
	defaultBusTimeout    = 1000 * time.Millisecond
)
