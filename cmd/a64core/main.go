// Command a64core loads an AArch64 ELF binary and runs it on the
// package emu execution core.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/sarchlab/a64core/emu"
	"github.com/sarchlab/a64core/loader"
)

var (
	maxInstructions uint64
	vectorLength    uint32
	featureNames    []string
	traceNames      []string
	logVerbosity    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "a64core",
		Short: "A64 user-mode instruction set simulator",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().Uint64Var(&maxInstructions, "max-instructions", 0,
		"abort after this many instructions (0 = unbounded)")
	rootCmd.PersistentFlags().Uint32Var(&vectorLength, "vl", 128,
		"SVE vector length in bits (128/256/512/1024/2048)")
	rootCmd.PersistentFlags().StringSliceVar(&featureNames, "features", []string{"fp", "lse", "crc32"},
		"CPU features to enable")
	rootCmd.PersistentFlags().IntVar(&logVerbosity, "v", 0, "log verbosity (0 = errors only)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTraceCmd())
	rootCmd.AddCommand(newFeaturesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <program.elf>",
		Short: "Load and execute an ELF binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(args[0], 0)
		},
	}
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <program.elf>",
		Short: "Execute an ELF binary with trace categories enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := emu.ParseTraceMask(traceNames)
			if err != nil {
				return err
			}
			return runProgram(args[0], mask)
		},
	}
	cmd.Flags().StringSliceVar(&traceNames, "categories", []string{"disasm"},
		"trace categories: disasm,regs,vregs,pregs,sysregs,write,branch")
	return cmd
}

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Print the CPU feature set a `run` invocation would enable",
		RunE: func(cmd *cobra.Command, args []string) error {
			features, err := parseFeatures(featureNames)
			if err != nil {
				return err
			}
			fs := emu.NewFeatureSet(features...)
			names := make([]string, 0, len(features))
			for _, f := range fs.All() {
				names = append(names, f.String())
			}
			fmt.Println(strings.Join(names, ","))
			return nil
		},
	}
}

func parseFeatures(names []string) ([]emu.Feature, error) {
	features := make([]emu.Feature, 0, len(names))
	for _, name := range names {
		f, ok := emu.ParseFeature(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		features = append(features, f)
	}
	return features, nil
}

func runProgram(path string, traceMask uint32) error {
	prog, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	features, err := parseFeatures(featureNames)
	if err != nil {
		return err
	}

	sim := emu.NewSimulator(
		emu.WithVectorLength(emu.VectorBits(vectorLength)),
		emu.WithMaxInstructions(maxInstructions),
		emu.WithFeatures(features...),
		emu.WithLogger(stdr.New(nil).V(logVerbosity).WithName("a64core")),
	)
	prog.LoadInto(sim)
	sim.SetTraceMask(traceMask)

	exitCode := sim.Run()
	fmt.Printf("exit code: %d\n", exitCode)
	fmt.Printf("instructions executed: %d\n", sim.InstructionCount())
	if exitCode != 0 {
		os.Exit(int(exitCode))
	}
	return nil
}
