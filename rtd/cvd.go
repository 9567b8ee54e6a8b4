package rtd

import (
	"fmt"
	"math"
)

// Callendar-Van Dusen coefficients for IEC 60751 platinum.
const (
	cvdA float64 = 3.9083e-3
	cvdB float64 = -5.775e-7
	cvdC float64 = -4.183e-12
)

// Nominal 0°C resistances.
const (
	PT100R0  = 100.0
	PT1000R0 = 1000.0
)

// CallendarVanDusen returns the resistance of a platinum RTD with 0°C
// resistance r0 at temperature t (°C).
func CallendarVanDusen(r0, t float64) float64 {
	r := 1 + cvdA*t + cvdB*t*t
	if t < 0 {
		r += cvdC * (t - 100) * t * t * t
	}
	return r0 * r
}

// Generate builds a table for a platinum RTD from `from` to `to` °C in steps
// of step °C. The end point is always included.
func Generate(r0, from, to, step float64) (Table, error) {
	if step <= 0 || to <= from || r0 <= 0 {
		return nil, fmt.Errorf("rtd: invalid table span r0=%g from=%g to=%g step=%g", r0, from, to, step)
	}
	n := int(math.Ceil((to-from)/step)) + 1
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		t := from + float64(i)*step
		if t > to {
			t = to
		}
		pts = append(pts, Point{Resistance: CallendarVanDusen(r0, t), Temperature: t})
	}
	return NewTable(pts)
}

var (
	pt100  = mustGenerate(PT100R0)
	pt1000 = mustGenerate(PT1000R0)
)

func mustGenerate(r0 float64) Table {
	t, err := Generate(r0, -200, 850, 1)
	if err != nil {
		panic(err)
	}
	return t
}

// PT100 returns a 1°C table for a PT100 element over -200°C..850°C.
func PT100() Table {
	return pt100
}

// PT1000 returns a 1°C table for a PT1000 element over -200°C..850°C.
func PT1000() Table {
	return pt1000
}
