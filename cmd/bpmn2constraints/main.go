// Command bpmn2constraints compiles BPMN diagrams into DECLARE and LTLf
// constraints.
package main

import (
	"os"

	"github.com/liamcoop/bpmnconstraints/internal/logger"
)

func main() {
	logger.SetOutput(os.Stderr)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
