package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/store"
)

func newCompileCmd(a *app) *cobra.Command {
	var (
		flags  compileFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile one diagram and print its constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd, a.cfg)
			if err != nil {
				return err
			}
			f := a.cfg.OutputFormat()
			if cmd.Flags().Changed("format") {
				if f, err = compiler.ParseFormat(format); err != nil {
					return err
				}
			}

			en, err := newEngine(a.cfg, req.Options)
			if err != nil {
				return err
			}
			m, err := en.CompileFile(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			if out != "" {
				if err := store.SaveFile(out, m); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d constraints to %s\n", len(m.Constraints), out)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), m.Strings(f))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "output format: DECLARE or LTLf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write both formats as JSON to this file")
	return cmd
}

func newParseCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Decode a diagram and print its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := bpmn.ParseFile(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), g.Summary())
		},
	}
}
