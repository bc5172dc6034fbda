package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var (
	flagConfig     string
	flagScenario   string
	flagPreset     string
	flagIterations int
	flagSeed       int64
	flagWebAddr    string
	flagBuggy      bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "streambench",
		Short:         "Self-checking verification harness for handshake-qualified stream buses",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness()
		},
	}
	root.Flags().StringVar(&flagConfig, "config", "", "TOML config file")
	root.Flags().StringVar(&flagScenario, "scenario", "", "YAML directed-stimulus scenario file")
	root.Flags().StringVar(&flagPreset, "preset", "", "predefined configuration name (default, smoke, backpressure)")
	root.Flags().IntVar(&flagIterations, "iterations", 0, "override stimulus iteration count")
	root.Flags().Int64Var(&flagSeed, "seed", 0, "override stimulus seed")
	root.Flags().StringVar(&flagWebAddr, "web", "", "serve the live websocket monitor on this address")
	root.Flags().BoolVar(&flagBuggy, "buggy", false, "run the fault-injected register (expect failures)")

	root.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List predefined configurations",
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0)
			for name := range GetPredefinedConfigs() {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	})
	return root
}

func resolveConfig() (*Config, error) {
	var cfg *Config
	switch {
	case flagConfig != "":
		loaded, err := LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case flagPreset != "":
		preset, ok := GetPredefinedConfigs()[flagPreset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", flagPreset)
		}
		cfg = preset
	default:
		cfg = DefaultConfig()
	}

	if flagIterations > 0 {
		cfg.Iterations = flagIterations
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagWebAddr != "" {
		cfg.WebAddr = flagWebAddr
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runHarness() error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	GetLogger().SetLevel(ParseLogLevel(cfg.LogLevel))

	var stim Stimulus
	if flagScenario != "" {
		scenario, err := LoadScenario(flagScenario)
		if err != nil {
			return err
		}
		GetLogger().Infof("scenario %q: %d ticks", scenario.Name, scenario.Ticks())
		stim = scenario.Stimulus(cfg.FieldWidths)
	}

	var unit Unit
	if flagBuggy {
		unit = NewDelayedRegister(cfg.FieldWidths.Data)
	}

	tb, err := NewTestbench(cfg, unit, stim)
	if err != nil {
		return err
	}

	if cfg.WebAddr != "" {
		monitor := NewWebMonitor(cfg.WebAddr, tb.Broker())
		go func() {
			if err := monitor.Serve(); err != nil {
				GetLogger().Errorf("live monitor: %v", err)
			}
		}()
	}

	summary, err := tb.Run()
	if err != nil {
		return err
	}
	PrintSummary(summary)
	if !summary.Passed() {
		return fmt.Errorf("%d mismatches detected", summary.Mismatches)
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		GetLogger().Errorf("%v", err)
		os.Exit(1)
	}
}
