package tui

import (
	"fmt"
	"io"

	"github.com/san-kum/ljsim/internal/dynamo"
)

// Reporter prints one progress line per sample it is given. Register it with
// sim.Simulator.AddReporter to get the fixed report cadence.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) OnSample(s dynamo.Sample, sys *dynamo.System) {
	fmt.Fprintf(r.w, "Step: %d, KE: %.2e J, PE: %.2e J, Total Energy: %.2e J, Temperature: %.2f K\n",
		s.Step, s.Kinetic, s.Potential, s.Total, s.Temperature)
}
