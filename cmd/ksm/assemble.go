package ksm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/asm"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/spf13/cobra"
)

var assembleOutputPath string
var assembleVersion string
var assembleHeaderPath string

var assembleCmd = &cobra.Command{
	Use:   "assemble file.cksm",
	Short: "Assemble a CKSM body (plus its HKSM header) into a .ksm file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := diag.New("")
		if err != nil {
			return err
		}
		defer closeLog()

		bodyPath := args[0]
		bodyBytes, err := os.ReadFile(bodyPath)
		if err != nil {
			return kerr.MakeError(err, "reading %s", bodyPath)
		}

		headerPath := assembleHeaderPath
		if headerPath == "" {
			base := strings.TrimSuffix(bodyPath, filepath.Ext(bodyPath))
			headerPath = base + ".hksm"
		}
		headerBytes, err := os.ReadFile(headerPath)
		if err != nil {
			return kerr.MakeError(err, "reading %s", headerPath)
		}

		var version instructions.Version
		switch assembleVersion {
		case "1.3.0":
			version = instructions.V130
		case "1.3.2", "":
			version = instructions.V132
		default:
			return kerr.MakeError(kerr.ErrUnknownVersion, "unsupported --version %q", assembleVersion)
		}

		f, err := asm.Assemble(string(bodyBytes), string(headerBytes), version)
		if err != nil {
			return err
		}

		raw := container.Build(f)

		outPath := assembleOutputPath
		if outPath == "" {
			base := strings.TrimSuffix(bodyPath, filepath.Ext(bodyPath))
			outPath = base + ".ksm"
		}
		if err := container.WriteFile(outPath, raw); err != nil {
			return err
		}

		log.Info("assembled", "body", bodyPath, "header", headerPath, "output", outPath)
		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOutputPath, "output", "o", "", "Output .ksm path (default: alongside the body file)")
	assembleCmd.Flags().StringVar(&assembleHeaderPath, "header", "", "HKSM header path (default: body path with .hksm extension)")
	assembleCmd.Flags().StringVar(&assembleVersion, "version", "1.3.2", "Target container version: 1.3.0 or 1.3.2")
}
