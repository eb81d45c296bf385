// Package ksm wires the KSM/CKSM translator into the ksmtool CLI:
// disassemble, assemble, a batch directory scan, and an interactive
// inspector.
package ksm

import (
	"github.com/spf13/cobra"
)

// KsmCmd is the parent command grouping every KSM-related subcommand.
var KsmCmd = &cobra.Command{
	Use:   "ksm",
	Short: "Translate between the KSM binary container and its CKSM/HKSM text form",
}

func init() {
	KsmCmd.AddCommand(disassembleCmd, assembleCmd, scanCmd, inspectCmd)
}
