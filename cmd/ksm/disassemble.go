package ksm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/disasm"
	"github.com/spf13/cobra"
)

var disassembleOutputDir string
var disassembleDiagFile string

var disassembleCmd = &cobra.Command{
	Use:   "disassemble [file.ksm]...",
	Short: "Disassemble one or more .ksm files into CKSM/HKSM text pairs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := diag.New(disassembleDiagFile)
		if err != nil {
			return err
		}
		defer closeLog()

		for _, path := range args {
			if err := disassembleOne(path, log); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

func disassembleOne(path string, log *slog.Logger) error {
	raw, err := container.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := container.Read(raw)
	if err != nil {
		return err
	}

	result, err := disasm.Disassemble(f, log)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := disassembleOutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	bodyPath := filepath.Join(dir, base+".cksm")
	headerPath := filepath.Join(dir, base+".hksm")

	if err := os.WriteFile(bodyPath, []byte(result.Body), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(headerPath, []byte(result.Header), 0o644); err != nil {
		return err
	}

	log.Info("disassembled", "input", path, "body", bodyPath, "header", headerPath)
	return nil
}

func init() {
	disassembleCmd.Flags().StringVarP(&disassembleOutputDir, "output-dir", "o", "", "Directory to write .cksm/.hksm output to (default: alongside input file)")
	disassembleCmd.Flags().StringVar(&disassembleDiagFile, "diagnostics", "", "Write structured JSON diagnostics to this file")
}
