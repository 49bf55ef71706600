// Package main provides gselect, a tool that replays branch traces through
// the speculative gselect predictor and reports its accuracy.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/gselect/timing/bpred"
	"github.com/sarchlab/gselect/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("gselect", flag.ContinueOnError)
	flags.SetOutput(stderr)

	configPath := flags.String("config", "", "Path to predictor configuration JSON file")
	saveConfig := flags.String("save-config", "", "Write the effective configuration to this path and exit")
	depth := flags.Int("depth", 8, "Maximum in-flight branches per thread")
	verbose := flags.Bool("v", false, "Trace every predictor operation to stderr")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading predictor config: %v\n", err)
		return 1
	}

	if *saveConfig != "" {
		if err := config.SaveConfig(*saveConfig); err != nil {
			fmt.Fprintf(stderr, "Error saving predictor config: %v\n", err)
			return 1
		}
		return 0
	}

	if flags.NArg() < 1 {
		fmt.Fprintf(stderr, "Usage: gselect [options] <branches.trace>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
		return 1
	}

	tracePath := flags.Arg(0)

	records, err := trace.ReadFile(tracePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading trace: %v\n", err)
		return 1
	}

	if err := trace.CheckThreads(records, config.NumThreads); err != nil {
		fmt.Fprintf(stderr, "Error: %v (raise num_threads in the config)\n", err)
		return 1
	}

	predictor, err := bpred.NewGSelect(*config)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating predictor: %v\n", err)
		return 1
	}

	if *verbose {
		predictor.AcceptHook(bpred.NewTraceLogger(writerLogger(stderr)))
	}

	result := trace.NewReplayer(predictor, *depth).Run(records)
	printReport(stdout, tracePath, config, result, predictor.Stats())

	return 0
}

// loadConfig returns the default configuration when path is empty.
func loadConfig(path string) (*bpred.Config, error) {
	if path == "" {
		return bpred.DefaultConfig(), nil
	}

	config, err := bpred.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func writerLogger(w io.Writer) logr.Logger {
	return funcr.New(func(prefix, args string) {
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: 1})
}

func printReport(
	w io.Writer,
	tracePath string,
	config *bpred.Config,
	result trace.Result,
	stats bpred.Stats,
) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Trace: %s\n", tracePath)
	fmt.Fprintf(w, "Predictor: gselect table=%d counter_bits=%d shift=%d threads=%d\n",
		config.TableSize, config.CounterBits, config.AddressShift, config.NumThreads)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Branches committed:   %d\n", result.Branches)
	fmt.Fprintf(w, "Conditional:          %d\n", result.Conditional)
	fmt.Fprintf(w, "Mispredictions:       %d\n", result.Mispredictions)
	fmt.Fprintf(w, "Accuracy:             %.2f%%\n", result.Accuracy())
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Predictor Events:\n")
	fmt.Fprintf(w, "  Lookups:            %d\n", stats.Lookups)
	fmt.Fprintf(w, "  Unconditional:      %d\n", stats.UncondBranches)
	fmt.Fprintf(w, "  BTB updates:        %d\n", stats.BTBUpdates)
	fmt.Fprintf(w, "  History fixes:      %d\n", stats.HistoryCorrections)
	fmt.Fprintf(w, "  Squashes:           %d\n", stats.Squashes)
}
