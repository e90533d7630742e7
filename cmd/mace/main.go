// Package main provides the mace command line tool.
//
// Usage:
//
//	mace energy [-config model.yaml] [-workers n] [-log-level level] [-o out.xyz] structures.xyz
//	mace config [-config model.yaml]
//	mace version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/born-ml/mace/internal/config"
	"github.com/born-ml/mace/internal/graph"
	"github.com/born-ml/mace/internal/model"
	"github.com/born-ml/mace/internal/parallel"
	"github.com/born-ml/mace/internal/xyz"
)

const version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "mace %s\n", version)
		return 0
	case "energy":
		err = energyCmd(args[1:], stdout, stderr)
	case "config":
		err = configCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "mace %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "mace - equivariant interatomic potential")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  energy     Evaluate energies of structures in an XYZ file")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  version    Show version")
}

func configCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "model configuration file (YAML, TOML or JSON)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.Dump(cfg, stdout)
}

func energyCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("energy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "model configuration file (YAML, TOML or JSON)")
	workers := fs.Int("workers", 0, "worker goroutines (0 = config or CPU count)")
	level := fs.String("log-level", "", "log level (overrides config)")
	output := fs.String("o", "", "write structures with energies as extended XYZ to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one structure file, got %d", fs.NArg())
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	logger := config.NewLogger(cfg.LogLevel, stderr, true)

	start := time.Now()
	m, err := model.New(cfg, model.WithLogger(logger), model.WithParallel(parallel.WithWorkers(cfg.Workers)))
	if err != nil {
		return err
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("model ready")

	structures, err := xyz.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	graphs := make([]*graph.Graph, len(structures))
	for k, s := range structures {
		g, err := graph.Build(s, m.Elements(), cfg.RMax)
		if err != nil {
			return fmt.Errorf("structure %d: %w", k, err)
		}
		graphs[k] = g
		logger.Debug().Int("structure", k).Int("atoms", g.NumNodes).Int("edges", g.NumEdges()).Msg("graph built")
	}

	start = time.Now()
	outs, err := m.EvaluateBatch(context.Background(), graphs)
	if err != nil {
		return err
	}
	logger.Info().Int("structures", len(outs)).Dur("elapsed", time.Since(start)).Msg("energies evaluated")

	energies := make([]float64, len(outs))
	for k, out := range outs {
		energies[k] = out.Energy[0]
		printEnergy(stdout, k, structures[k], out, logger)
	}
	if *output == "" {
		return nil
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := xyz.Write(f, structures, energies); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printEnergy(w io.Writer, k int, s graph.Structure, out *model.Output, logger zerolog.Logger) {
	fmt.Fprintf(w, "%d\t%d\t%.10f", k, s.Len(), out.Energy[0])
	if s.Energy != nil {
		fmt.Fprintf(w, "\t%.10f", out.Energy[0]-*s.Energy)
		logger.Debug().Int("structure", k).Float64("reference", *s.Energy).Msg("reference energy")
	}
	fmt.Fprintln(w)
}
