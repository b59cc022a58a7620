package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/ljsim/internal/automation"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/loader"
	"github.com/san-kum/ljsim/internal/optim"
	"github.com/san-kum/ljsim/internal/storage"
	"github.com/spf13/cobra"
)

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}

	results, runErr := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), os.Stdout)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTEG\tSTEPS\tDRIFT\tMEAN T (K)\tRUN ID")
	for _, r := range results {
		runID := "-"
		if r.Step.SaveAs != "" {
			runID, err = st.Save(storage.RunMetadata{
				Name:       r.Config.Name,
				Input:      r.Config.Input,
				Integrator: r.Config.Integrator,
				Params:     r.Config.Params(),
			}, r.Result)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%.2f\t%s\n",
			r.Config.Name, r.Config.Integrator, r.Result.StepsTaken, r.Result.EnergyDrift, r.Result.Metrics["mean_temperature"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return runErr
}

func studyInput(cmd *cobra.Command, args []string) (*config.Config, *loader.Data, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	cfg, err := resolveConfig(cmd, input)
	if err != nil {
		return nil, nil, err
	}
	data, err := experiment.LoadInitial(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, data, err := studyInput(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{ParamName: param, ParamMin: paramMin, ParamMax: paramMax, NumSteps: numPoints}
	results, err := automation.RunSweep(context.Background(), sweep, experiment.NewRegistry(), cfg, data, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tDRIFT\tMAX DRIFT\tMEAN T (K)\tGUARD HITS\n", param)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.4g\t%d\terror: %v\t\t\t\n", r.ParamValue, r.StepsTaken, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.3e\t%.3e\t%.2f\t%.0f\n",
			r.ParamValue, r.StepsTaken, r.EnergyDrift, r.MaxDrift, r.MeanTemperature, r.GuardHits)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, data, err := studyInput(cmd, args)
	if err != nil {
		return err
	}

	g := optim.NewGridSearch([]string{param}, [][]float64{values})
	best, trials, err := g.Search(context.Background(), experiment.NewRegistry(), cfg, data, metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", param, metric)
	for _, t := range trials {
		if t.Err != nil {
			fmt.Fprintf(w, "%.4g\terror: %v\n", t.Params[param], t.Err)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%.4e\n", t.Params[param], t.Value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s=%.4g (%s=%.4e)\n", param, best.Params[param], metric, best.Value)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, data, err := studyInput(cmd, args)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{Perturbation: perturb, NumTrials: numTrials, Seed: seed}
	results, err := automation.RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), cfg, data, os.Stdout)
	if err != nil {
		return err
	}

	stable := 0
	worst := 0.0
	for _, r := range results {
		if r.Stable {
			stable++
		}
		worst = max(worst, r.EnergyDrift)
	}
	fmt.Printf("\nstable trials: %d/%d\n", stable, len(results))
	fmt.Printf("largest energy drift: %.3e\n", worst)
	return nil
}
