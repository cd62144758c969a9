package main

import (
	"github.com/spf13/cobra"

	"github.com/liamcoop/bpmnconstraints/dataset"
)

func newDatasetCmd(a *app) *cobra.Command {
	var (
		flags     compileFlags
		workers   int
		parseOnly bool
	)
	cmd := &cobra.Command{
		Use:   "compile-dataset DIR",
		Short: "Compile every .bpmn and .xml diagram below DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.cfg.Workers
			if cmd.Flags().Changed("workers") {
				n = workers
			}

			if parseOnly {
				stats, err := dataset.Parse(cmd.Context(), args[0], n)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			req, err := flags.request(cmd, a.cfg)
			if err != nil {
				return err
			}
			en, err := newEngine(a.cfg, req.Options)
			if err != nil {
				return err
			}
			report, err := dataset.Compile(cmd.Context(), en, args[0], dataset.Options{Workers: n, Request: req})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "diagrams compiled concurrently")
	cmd.Flags().BoolVar(&parseOnly, "parse-only", false, "only decode the diagrams and count elements")
	return cmd
}
