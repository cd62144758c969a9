package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liamcoop/bpmnconstraints/compare"
	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/engine"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		reference   string
		constraints string
		threshold   float64
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score compiled constraints against a reference list",
		Long: `Score compiled constraints against a reference list of DECLARE descriptors.

--constraints may name a diagram (.bpmn), which is compiled first, or a
constraint list in any form --dataset accepts: a JSON array, a compile
--out export, or one descriptor per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want, err := compare.Load(reference)
			if err != nil {
				return err
			}
			got, err := a.constraints(cmd, constraints)
			if err != nil {
				return err
			}
			res, err := compare.Compare(got, want, threshold)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&reference, "dataset", "", "reference constraint list")
	cmd.Flags().StringVar(&constraints, "constraints", "", "compiled constraints or a diagram")
	cmd.Flags().Float64Var(&threshold, "threshold", compare.DefaultThreshold, "activity name similarity needed for a fuzzy match")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("constraints")
	return cmd
}

func (a *app) constraints(cmd *cobra.Command, path string) ([]string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".bpmn") {
		return compare.Load(path)
	}
	opts, err := a.cfg.CompilerOptions()
	if err != nil {
		return nil, err
	}
	en, err := newEngine(a.cfg, opts)
	if err != nil {
		return nil, err
	}
	m, err := en.CompileFile(cmd.Context(), path, engine.Request{Options: opts})
	if err != nil {
		return nil, err
	}
	return m.Strings(compiler.FormatDeclare), nil
}
