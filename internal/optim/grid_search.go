package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/loader"
)

// GridSearch runs one experiment per point of the cartesian product of the
// parameter ranges and keeps the point with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search evaluates the grid on copies of base with initial state data.
// Points whose run fails are recorded with Err set and never win. A metric
// that is NaN never wins either.
func (g *GridSearch) Search(ctx context.Context, r *experiment.Registry, base *config.Config, data *loader.Data, metricName string) (best Trial, trials []Trial, err error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("grid search: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, rng := range g.ranges {
		if len(rng) == 0 {
			return Trial{}, nil, fmt.Errorf("grid search: empty range for %s", g.paramNames[i])
		}
	}

	best.Value = math.Inf(1)
	idx := make([]int, len(g.ranges))
	for {
		if err := ctx.Err(); err != nil {
			return best, trials, err
		}

		t := g.evaluate(ctx, r, base, data, metricName, idx)
		trials = append(trials, t)
		if t.Err == nil && t.Value < best.Value {
			best = t
		}

		if !next(idx, g.ranges) {
			break
		}
	}

	if best.Params == nil {
		return best, trials, fmt.Errorf("grid search: no successful trial out of %d", len(trials))
	}
	return best, trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, r *experiment.Registry, base *config.Config, data *loader.Data, metricName string, idx []int) Trial {
	cfg := *base
	t := Trial{Params: make(map[string]float64, len(idx))}
	for i, k := range idx {
		v := g.ranges[i][k]
		t.Params[g.paramNames[i]] = v
		if err := cfg.Set(g.paramNames[i], v); err != nil {
			t.Err = err
			return t
		}
	}

	exp, err := experiment.New(r, &cfg, data)
	if err != nil {
		t.Err = err
		return t
	}
	result, err := exp.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}

	v, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("grid search: metric %s not recorded", metricName)
		return t
	}
	t.Value = v
	if math.IsNaN(v) {
		t.Value = math.Inf(1)
	}
	return t
}

// next advances idx like an odometer, last parameter fastest. It returns
// false after the final combination.
func next(idx []int, ranges [][]float64) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(ranges[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}
