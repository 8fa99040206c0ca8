// Command taskforged is a demo CLI exercising the PSO and GA drivers
// end to end: generate a random instance, run one to completion, and print
// its best solution. The CLI is a host-level concern, not part of the core
// programmatic surface.
package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/ga"
	"github.com/taskforge/taskforge/orchestrator"
	"github.com/taskforge/taskforge/persist"
	"github.com/taskforge/taskforge/pso"
	"github.com/taskforge/taskforge/stats"
)

type rootFlags struct {
	algorithm    string
	taskCount    int
	machineCount int
	seed         int64
	maxIter      int
	outputPath   string
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "taskforged",
		Short: "taskforged runs the PSO/GA schedule optimizer on a random instance",
	}
	rootCmd.PersistentFlags().StringVar(&flags.algorithm, "algorithm", "pso", "search driver to use: pso or ga")
	rootCmd.PersistentFlags().IntVar(&flags.taskCount, "tasks", 20, "number of tasks to generate")
	rootCmd.PersistentFlags().IntVar(&flags.machineCount, "machines", 4, "number of machines to generate")
	rootCmd.PersistentFlags().Int64Var(&flags.seed, "seed", 0, "random seed (default: time-based)")
	rootCmd.PersistentFlags().IntVar(&flags.maxIter, "max-iterations", 0, "override MaxIterations/MaxGenerations (0: driver default)")

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newStepCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("taskforged failed")
		os.Exit(1)
	}
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the configured driver to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOrchestrator(flags)
			if err != nil {
				return err
			}
			obs := orchestrator.NewLoggingObserver()
			if err := o.Run(context.Background(), orchestrator.RunConfig{}, obs); err != nil {
				return err
			}
			return report(o, flags.outputPath)
		},
	}
	cmd.Flags().StringVar(&flags.outputPath, "out", "", "write the JSON export envelope to this path")
	return cmd
}

func newStepCmd(flags *rootFlags) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "step",
		Short: "advance the configured driver by a fixed number of iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := buildOrchestrator(flags)
			if err != nil {
				return err
			}
			if err := o.StartStepMode(orchestrator.NewLoggingObserver()); err != nil {
				return err
			}
			for i := 0; i < steps && o.CanStep(); i++ {
				if err := o.Step(); err != nil {
					return err
				}
			}
			return report(o, flags.outputPath)
		},
	}
	cmd.Flags().IntVar(&steps, "count", 10, "number of iterations to advance")
	cmd.Flags().StringVar(&flags.outputPath, "out", "", "write the JSON export envelope to this path")
	return cmd
}

func buildOrchestrator(flags *rootFlags) (*orchestrator.Orchestrator, error) {
	o := orchestrator.New(stats.DefaultStatsReceiver())

	var seed *int64
	if flags.seed != 0 {
		s := flags.seed
		seed = &s
	}
	if err := o.InitializeRandomInstance(flags.taskCount, flags.machineCount, seed, nil); err != nil {
		return nil, err
	}

	switch flags.algorithm {
	case "ga":
		o.SetAlgorithmKind(orchestrator.GA)
		cfg := ga.DefaultConfig()
		if flags.maxIter > 0 {
			cfg.MaxGenerations = flags.maxIter
		}
		cfg.RandomSeed = seed
		if err := o.SetGAConfig(cfg); err != nil {
			return nil, err
		}
	case "pso":
		o.SetAlgorithmKind(orchestrator.PSO)
		cfg := pso.DefaultConfig()
		if flags.maxIter > 0 {
			cfg.MaxIterations = flags.maxIter
		}
		cfg.RandomSeed = seed
		if err := o.SetPSOConfig(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown algorithm %q (want pso or ga)", flags.algorithm)
	}

	return o, nil
}

func report(o *orchestrator.Orchestrator, outputPath string) error {
	best := o.CurrentSolution()
	if best == nil {
		return fmt.Errorf("no solution found")
	}
	fmt.Printf("status=%s makespan=%v totalPenalty=%v fitness=%v\n",
		o.Status(), best.Makespan, best.TotalPenalty, best.Fitness)

	if outputPath == "" {
		return nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()
	if err := persist.Export(f, o.Instance(), *best); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outputPath)
	return nil
}
