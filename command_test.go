package ad779x

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncode(t *testing.T) {
	patterns := []struct {
		name string
		cmd  Command
		b    byte
	}{
		{"write comm", Command{Reg: RegComm}, 0x00},
		{"read status", Command{Read: true, Reg: RegStatus}, 0x40},
		{"write mode", Command{Reg: RegMode}, 0x08},
		{"write config", Command{Reg: RegConfig}, 0x10},
		{"read data", Command{Read: true, Reg: RegData}, 0x58},
		{"read id", Command{Read: true, Reg: RegID}, 0x60},
		{"write io", Command{Reg: RegIO}, 0x28},
		{"read fullscale", Command{Read: true, Reg: RegFullScale}, 0x78},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			assert.Equal(t, p.b, p.cmd.Encode())
		}
		t.Run(p.name, tf)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	for _, reg := range Registers {
		for _, read := range []bool{false, true} {
			cmd := Command{Read: read, Reg: reg}
			b := cmd.Encode()
			// operation is bit 6 alone, register bits 3-5 alone
			assert.Zero(t, b&^0x78, cmd.String())
			assert.Equal(t, read, b&0x40 != 0)
			assert.Equal(t, uint8(reg), (b>>3)&0x07)
			got, err := DecodeCommand(b)
			require.Nil(t, err)
			assert.Equal(t, cmd, got)
		}
	}
}

func TestDecodeCommandInvalid(t *testing.T) {
	for _, b := range []byte{0x80, 0xFF, 0x01, 0x44, 0x5A} {
		_, err := DecodeCommand(b)
		assert.NotNil(t, err, "%#02x", b)
	}
}

func TestRegisterSize(t *testing.T) {
	assert.Equal(t, 1, RegStatus.Size())
	assert.Equal(t, 2, RegMode.Size())
	assert.Equal(t, 2, RegConfig.Size())
	assert.Equal(t, 3, RegData.Size())
	assert.Equal(t, 1, RegID.Size())
	assert.Equal(t, 1, RegIO.Size())
	assert.Equal(t, 3, RegOffset.Size())
	assert.Equal(t, 3, RegFullScale.Size())
	assert.Equal(t, 0, Register(9).Size())
	assert.Equal(t, "Register(9)", Register(9).String())
}

func TestVariantProfile(t *testing.T) {
	p, err := variantProfile(AD7793)
	require.Nil(t, err)
	assert.Equal(t, ModeWord(0x000A), p.mode)
	assert.Equal(t, ConfigWord(0x1210), p.config)
	assert.Equal(t, IOWord(0x0A), p.io)
	assert.False(t, p.refDetect)
	assert.Equal(t, Gain4, p.gain)

	p, err = variantProfile(AD7794)
	require.Nil(t, err)
	assert.Equal(t, ModeWord(0x000A), p.mode)
	assert.Equal(t, ConfigWord(0x1232), p.config)
	assert.Equal(t, IOWord(0x0E), p.io)
	assert.True(t, p.refDetect)

	_, err = variantProfile(Variant(7))
	assert.NotNil(t, err)
}

func TestGainFactor(t *testing.T) {
	assert.Equal(t, uint64(1), Gain1.Factor())
	assert.Equal(t, uint64(4), Gain4.Factor())
	assert.Equal(t, uint64(128), Gain128.Factor())
}
