// Command profile runs an ELF binary on the emu core and renders an
// HTML bar chart of the opcodes it executed most, using emu.Sampler.
package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/sarchlab/a64core/emu"
	"github.com/sarchlab/a64core/loader"
)

var (
	topN       int
	outputPath string
)

func main() {
	cmd := &cobra.Command{
		Use:   "profile <program.elf>",
		Short: "Run an ELF binary and chart its hottest opcodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return profile(args[0])
		},
	}
	cmd.Flags().IntVar(&topN, "top", 20, "number of opcodes to chart")
	cmd.Flags().StringVar(&outputPath, "out", "profile.html", "output HTML file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func profile(path string) error {
	prog, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	sim := emu.NewSimulator()
	prog.LoadInto(sim)
	sim.Run()

	samples := sim.Sampler().Top(topN)
	opNames := make([]string, len(samples))
	counts := make([]opts.BarData, len(samples))
	for i, s := range samples {
		opNames[i] = s.Op.String()
		counts[i] = opts.BarData{Value: s.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hottest opcodes",
			Subtitle: fmt.Sprintf("%s — %d instructions executed", path, sim.InstructionCount()),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "opcode", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(opNames).AddSeries("executions", counts)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer func() { _ = f.Close() }()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	fmt.Printf("wrote %s\n", outputPath)
	return nil
}
