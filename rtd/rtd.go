// Package rtd maps resistance to temperature through a calibration table.
//
// A table is a list of (resistance, temperature) points sorted by ascending
// resistance. Lookups find the enclosing interval with a binary search and
// interpolate linearly between its end points. Resistances outside the table
// are reported as out of range rather than extrapolated.
package rtd

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrOutOfRange is returned for resistances outside the table.
var ErrOutOfRange = errors.New("resistance out of table range")

// Point is one calibration sample. Resistance is in ohms, Temperature in
// degrees Celsius.
type Point struct {
	Resistance  float64
	Temperature float64
}

// Table is a calibration table sorted by strictly ascending resistance.
type Table []Point

// NewTable validates points and returns them as a Table.
func NewTable(points []Point) (Table, error) {
	for i := 1; i < len(points); i++ {
		if !(points[i].Resistance > points[i-1].Resistance) {
			return nil, fmt.Errorf("rtd: point %d (%gΩ) not above point %d (%gΩ)",
				i, points[i].Resistance, i-1, points[i-1].Resistance)
		}
	}
	return Table(points), nil
}

// Range returns the lowest and highest resistance covered by t.
func (t Table) Range() (lo, hi float64) {
	if len(t) == 0 {
		return 0, 0
	}
	return t[0].Resistance, t[len(t)-1].Resistance
}

// Search returns the index of the last point whose resistance is at most r.
// ok is false when r lies outside the table.
func (t Table) Search(r float64) (i int, ok bool) {
	if len(t) == 0 || math.IsNaN(r) || r < t[0].Resistance || r > t[len(t)-1].Resistance {
		return 0, false
	}
	// First index with Resistance > r, minus one.
	i = sort.Search(len(t), func(j int) bool { return t[j].Resistance > r }) - 1
	return i, true
}

// Interpolate returns the temperature at r on the segment starting at point
// i. An i naming the last point returns that point's temperature.
func (t Table) Interpolate(i int, r float64) float64 {
	if i == len(t)-1 {
		return t[i].Temperature
	}
	p0, p1 := t[i], t[i+1]
	return p0.Temperature + (r-p0.Resistance)*(p1.Temperature-p0.Temperature)/(p1.Resistance-p0.Resistance)
}

// Temperature returns the interpolated temperature for resistance r.
func (t Table) Temperature(r float64) (float64, error) {
	if len(t) < 2 {
		return 0, fmt.Errorf("rtd: %w: table has %d points", ErrOutOfRange, len(t))
	}
	i, ok := t.Search(r)
	if !ok {
		lo, hi := t.Range()
		return 0, fmt.Errorf("rtd: %w: %gΩ not in [%gΩ, %gΩ]", ErrOutOfRange, r, lo, hi)
	}
	return t.Interpolate(i, r), nil
}
