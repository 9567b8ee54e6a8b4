package ad779x

import "fmt"

// Register is the 3-bit register address carried in a command byte.
type Register uint8

const (
	// RegComm and RegStatus share address 0: a write reaches the
	// communications register, a read returns the status register.
	RegComm Register = iota
	RegMode
	RegConfig
	RegData
	RegID
	RegIO
	RegOffset
	RegFullScale

	RegStatus = RegComm
)

var registerNames = [...]string{
	RegComm:      "Status",
	RegMode:      "Mode",
	RegConfig:    "Configuration",
	RegData:      "Data",
	RegID:        "ID",
	RegIO:        "IO",
	RegOffset:    "Offset",
	RegFullScale: "FullScale",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", uint8(r))
}

// Size is the payload length of the register in bytes.
func (r Register) Size() int {
	switch r {
	case RegStatus, RegID, RegIO:
		return 1
	case RegMode, RegConfig:
		return 2
	case RegData, RegOffset, RegFullScale:
		return 3
	}
	return 0
}

// Registers lists every addressable register in address order.
var Registers = []Register{RegStatus, RegMode, RegConfig, RegData, RegID, RegIO, RegOffset, RegFullScale}

// Command is the byte written to the communications register at the start of
// every transaction. It selects the register and direction of the next
// transfer.
type Command struct {
	Read bool
	Reg  Register
}

// Encode returns the command byte.
func (c Command) Encode() byte {
	b := (uint8(c.Reg) & commRegMask) << commRegShift
	if c.Read {
		b |= commRead
	}
	return b
}

func (c Command) String() string {
	op := "write"
	if c.Read {
		op = "read"
	}
	return fmt.Sprintf("%s %s", op, c.Reg)
}

// DecodeCommand parses a command byte. Bytes with the write-enable bit or
// any of the low three bits set are not commands this driver emits.
func DecodeCommand(b byte) (Command, error) {
	if b&commWEN != 0 {
		return Command{}, fmt.Errorf("ad779x: command %#02x has WEN set", b)
	}
	if b&0x07 != 0 {
		return Command{}, fmt.Errorf("ad779x: command %#02x has reserved bits set", b)
	}
	return Command{
		Read: b&commRead != 0,
		Reg:  Register((b >> commRegShift) & commRegMask),
	}, nil
}

// ModeWord is the 16-bit mode register value.
type ModeWord uint16

// ConfigWord is the 16-bit configuration register value.
type ConfigWord uint16

// IOWord is the 8-bit IO register value.
type IOWord uint8

func (w ModeWord) bytes() []byte   { return []byte{byte(w >> 8), byte(w)} }
func (w ConfigWord) bytes() []byte { return []byte{byte(w >> 8), byte(w)} }
func (w IOWord) bytes() []byte     { return []byte{byte(w)} }

// profile is the fixed register set written by Initialize.
type profile struct {
	mode      ModeWord
	config    ConfigWord
	io        IOWord
	gain      Gain
	refDetect bool
	id        uint8
}

func variantProfile(v Variant) (profile, error) {
	mode := modeContinuous | modeClkInternal64k | modeRate16_7Hz
	switch v {
	case AD7793:
		return profile{
			mode:   mode,
			config: configUnipolar | ConfigWord(Gain4)<<configGainShift | configBuffered | configChAIN1,
			io:     ioIexcToIOUT1 | ioIexc210uA,
			gain:   Gain4,
			id:     idAD7793,
		}, nil
	case AD7794:
		return profile{
			mode:      mode,
			config:    configUnipolar | ConfigWord(Gain4)<<configGainShift | configRefDetect | configBuffered | configChAIN3,
			io:        ioIexcToIOUT2 | ioIexc210uA,
			gain:      Gain4,
			refDetect: true,
			id:        idAD7794,
		}, nil
	}
	return profile{}, fmt.Errorf("invalid variant: %v", v)
}
