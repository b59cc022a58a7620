package metrics

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// GuardHits counts samples in which at least one pair was at or inside the
// minimum-distance guard, i.e. had its interaction silently dropped.
type GuardHits struct {
	name       string
	violations int
}

func NewGuardHits() *GuardHits {
	return &GuardHits{name: "guard_hits"}
}

func (g *GuardHits) Name() string { return g.name }

func (g *GuardHits) Observe(s dynamo.Sample, sys *dynamo.System) {
	guard := sys.Params.MinDistance
	n := sys.N()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r2.Norm(r2.Sub(sys.Particles[i].Pos, sys.Particles[j].Pos)) <= guard {
				g.violations++
				return
			}
		}
	}
}

func (g *GuardHits) Value() float64 { return float64(g.violations) }

func (g *GuardHits) Reset() {
	g.violations = 0
}
