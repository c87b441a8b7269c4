package tuner

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// SaveConvergencePlot renders the best-so-far objective value over the
// evaluation sequence to a PNG, a per-run artifact for inspecting whether
// the guided phase actually improved on the random one.
func SaveConvergencePlot(history []Observation, path string) error {
	if len(history) == 0 {
		return errors.NewValueError("SaveConvergencePlot", "empty history")
	}

	pts := make(plotter.XYs, len(history))
	best := history[0].Value
	for i, obs := range history {
		if obs.Value > best {
			best = obs.Value
		}
		pts[i].X = float64(i + 1)
		pts[i].Y = best
	}

	p := plot.New()
	p.Title.Text = "hyperparameter search convergence"
	p.X.Label.Text = "evaluation"
	p.Y.Label.Text = "best objective (-log-loss)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building convergence line")
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving convergence plot")
	}
	return nil
}
