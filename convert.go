package ad779x

import (
	"fmt"
	"math"
	"math/bits"

	"periph.io/x/conn/v3/physic"
)

// Code is a raw 24-bit conversion result.
type Code uint32

// MaxCode is the full-scale conversion code.
const MaxCode Code = 1<<CodeBits - 1

// codeFromBytes assembles a big-endian 24-bit code.
func codeFromBytes(b []byte) Code {
	return Code(b[0])<<16 | Code(b[1])<<8 | Code(b[2])
}

// Milliohms is a fixed-point resistance in thousandths of an ohm.
type Milliohms int64

// Ohms returns the resistance in ohms.
func (m Milliohms) Ohms() float64 {
	return float64(m) / 1000
}

// ElectricResistance converts to periph's nano-ohm unit.
func (m Milliohms) ElectricResistance() physic.ElectricResistance {
	return physic.ElectricResistance(m) * physic.MilliOhm
}

func (m Milliohms) String() string {
	sign := ""
	v := uint64(m)
	if m < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03dΩ", sign, v/1000, v%1000)
}

// scale is the extra fixed-point factor carried through the division and
// removed by rounding at the end.
const scale = 1000

// CodeToResistance converts a unipolar conversion code to resistance:
//
//	R = code * ref / (2^24 * gain)
//
// ref is the full-scale reference in milliohms. The product is formed in
// 128 bits with three extra decimal digits and rounded half up, so the result
// is exact to the milliohm for any 24-bit code.
func CodeToResistance(code Code, gain Gain, refMilliohms uint64) Milliohms {
	code &= MaxCode
	div := uint64(1<<CodeBits) * gain.Factor()
	hi, lo := bits.Mul64(uint64(code)*scale, refMilliohms)
	if hi >= div {
		return Milliohms(math.MaxInt64)
	}
	q, _ := bits.Div64(hi, lo, div)
	q = (q + scale/2) / scale
	if q > math.MaxInt64 {
		return Milliohms(math.MaxInt64)
	}
	return Milliohms(q)
}

// BipolarCodeToResistance is the offset-binary alternative:
//
//	R = (code/2^23 - 1) * ref / gain
//
// Codes below mid-scale give negative values.
func BipolarCodeToResistance(code Code, gain Gain, refMilliohms uint64) Milliohms {
	code &= MaxCode
	const mid = 1 << (CodeBits - 1)
	neg := code < mid
	var off uint64
	if neg {
		off = uint64(mid - code)
	} else {
		off = uint64(code - mid)
	}
	div := uint64(mid) * gain.Factor()
	hi, lo := bits.Mul64(off*scale, refMilliohms)
	if hi >= div {
		if neg {
			return Milliohms(math.MinInt64)
		}
		return Milliohms(math.MaxInt64)
	}
	q, _ := bits.Div64(hi, lo, div)
	q = (q + scale/2) / scale
	if q > math.MaxInt64 {
		q = math.MaxInt64
	}
	if neg {
		return -Milliohms(q)
	}
	return Milliohms(q)
}

func (f Formula) convert(code Code, gain Gain, refMilliohms uint64) Milliohms {
	if f == FormulaBipolar {
		return BipolarCodeToResistance(code, gain, refMilliohms)
	}
	return CodeToResistance(code, gain, refMilliohms)
}
