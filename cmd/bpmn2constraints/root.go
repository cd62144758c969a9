package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/engine"
	"github.com/liamcoop/bpmnconstraints/internal/config"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "bpmn2constraints",
		Short:        "Compile BPMN diagrams into DECLARE and LTLf constraints",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "TRACE, DEBUG, INFO, WARN, ERROR or FATAL")

	root.AddCommand(
		newCompileCmd(a),
		newParseCmd(a),
		newDatasetCmd(a),
		newCompareCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	a.cfg = cfg
	return nil
}

// compileFlags are shared by compile and compile-dataset.
type compileFlags struct {
	transitivity      bool
	skipNamedGateways bool
	order             string
	filter            string
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.transitivity, "transitivity", false, "add relations implied by chains of adjacent activities")
	cmd.Flags().BoolVar(&f.skipNamedGateways, "skip-named-gateways", false, "treat labelled gateways as routing only")
	cmd.Flags().StringVar(&f.order, "precedence-order", "", "comma separated template names, most specific first")
	cmd.Flags().StringVar(&f.filter, "filter", "", `CEL expression selecting constraints, e.g. 'template == "response"'`)
}

// options merges the configuration with the flags the user set.
func (f *compileFlags) options(cmd *cobra.Command, cfg config.Config) (compiler.Options, error) {
	if cmd.Flags().Changed("transitivity") {
		cfg.Transitivity = f.transitivity
	}
	if cmd.Flags().Changed("skip-named-gateways") {
		cfg.SkipNamedGateways = f.skipNamedGateways
	}
	if cmd.Flags().Changed("precedence-order") {
		cfg.PrecedenceOrder = f.order
	}
	return cfg.CompilerOptions()
}

func (f *compileFlags) request(cmd *cobra.Command, cfg config.Config) (engine.Request, error) {
	opts, err := f.options(cmd, cfg)
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{Options: opts, Filter: f.filter}, nil
}

func newEngine(cfg config.Config, opts compiler.Options) (*engine.Engine, error) {
	return engine.New(engine.Config{Defaults: opts, CacheSize: cfg.CacheSize}, nil)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
