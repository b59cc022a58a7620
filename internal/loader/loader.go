// Package loader reads and writes initial-condition files.
//
// The format is line oriented:
//
//	Positions (Angstrom)
//	1 0.0 0.0
//	2 3.8 0.0
//
//	Velocities (Angstrom/picosecond)
//	1 1.2 -0.4
//	2 -1.2 0.4
//
// Records are "<id> <x> <y>", all three numeric. Lines that do not split
// into exactly three fields (blank lines, comments, extra columns) are
// skipped and counted.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	PositionsHeader  = "Positions (Angstrom)"
	VelocitiesHeader = "Velocities (Angstrom/picosecond)"

	// AngstromToMeter converts Å to m.
	AngstromToMeter = 1e-10
	// AngstromPerPsToMPerS converts Å/ps to m/s.
	AngstromPerPsToMPerS = 100
)

var (
	ErrMissingSection  = errors.New("loader: required section header not found")
	ErrMalformedNumber = errors.New("loader: malformed number")
)

// Data is the parsed content of an initial-condition file in SI units.
// Positions and Velocities are index aligned but not guaranteed to have the
// same length; callers validate that.
type Data struct {
	Positions  []r2.Vec
	Velocities []r2.Vec
	// Skipped counts lines inside a section that were not three fields.
	Skipped int
}

func Load(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Data, error) {
	const (
		none = iota
		positions
		velocities
	)

	data := &Data{}
	section := none
	seenPos, seenVel := false, false

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		switch line {
		case PositionsHeader:
			section, seenPos = positions, true
			continue
		case VelocitiesHeader:
			section, seenVel = velocities, true
			continue
		}
		if section == none {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			if len(fields) > 0 {
				data.Skipped++
			}
			continue
		}

		v, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if section == positions {
			data.Positions = append(data.Positions, r2.Scale(AngstromToMeter, v))
		} else {
			data.Velocities = append(data.Velocities, r2.Scale(AngstromPerPsToMPerS, v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !seenPos {
		return nil, fmt.Errorf("%w: %q", ErrMissingSection, PositionsHeader)
	}
	if !seenVel {
		return nil, fmt.Errorf("%w: %q", ErrMissingSection, VelocitiesHeader)
	}

	return data, nil
}

// parseRecord parses "<id> <x> <y>". The id must be numeric but is
// otherwise ignored; particles are identified by file order.
func parseRecord(fields []string) (r2.Vec, error) {
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r2.Vec{}, fmt.Errorf("%w: %q", ErrMalformedNumber, f)
		}
		v[i] = n
	}
	return r2.Vec{X: v[1], Y: v[2]}, nil
}

// Write emits d in the file format, converting back to Å and Å/ps. Particle
// ids are 1-based.
func Write(w io.Writer, d *Data) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, PositionsHeader)
	for i, p := range d.Positions {
		p = r2.Scale(1/AngstromToMeter, p)
		fmt.Fprintf(bw, "%d %s %s\n", i+1, formatFloat(p.X), formatFloat(p.Y))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, VelocitiesHeader)
	for i, v := range d.Velocities {
		v = r2.Scale(1/AngstromPerPsToMPerS, v)
		fmt.Fprintf(bw, "%d %s %s\n", i+1, formatFloat(v.X), formatFloat(v.Y))
	}

	return bw.Flush()
}

func Save(path string, d *Data) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
