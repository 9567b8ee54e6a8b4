package rtd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ReadCSV reads a table of "resistance,temperature" records. Blank lines and
// lines starting with '#' are skipped, as is a header row whose first field
// is not a number. Rows may come in any order; they are sorted by resistance.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var pts []Point
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rtd: %w", err)
		}
		res, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("rtd: line %d: resistance: %w", line, err)
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("rtd: line %d: temperature: %w", line, err)
		}
		pts = append(pts, Point{Resistance: res, Temperature: temp})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Resistance < pts[j].Resistance })
	return NewTable(pts)
}

// LoadCSV reads a table from a CSV file.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rtd: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes t as "resistance,temperature" records with a header.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"resistance", "temperature"}); err != nil {
		return err
	}
	for _, p := range t {
		rec := []string{
			strconv.FormatFloat(p.Resistance, 'f', 4, 64),
			strconv.FormatFloat(p.Temperature, 'f', 3, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
