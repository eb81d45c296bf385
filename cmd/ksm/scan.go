package ksm

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/disasm"
	"github.com/Manu343726/ksmtool/pkg/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scanOutputPath string

// scanReport is one directory sweep's findings, written out as YAML.
type scanReport struct {
	Files []scanFileReport `yaml:"files"`
}

type scanFileReport struct {
	Path        string `yaml:"path"`
	Version     string `yaml:"version"`
	Functions   int    `yaml:"functions"`
	Imports     int    `yaml:"imports"`
	ImportLines string `yaml:"importLines,omitempty"`
	Statics     int    `yaml:"statics"`
	Error       string `yaml:"error,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan directory",
	Short: "Walk a directory of .ksm files and report per-file structural summaries as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := diag.Discard()
		root := args[0]

		var report scanReport
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".ksm" {
				return nil
			}
			report.Files = append(report.Files, scanFile(path, log))
			return nil
		})
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(&report)
		if err != nil {
			return err
		}

		if scanOutputPath == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		return os.WriteFile(scanOutputPath, out, 0o644)
	},
}

func scanFile(path string, log *slog.Logger) scanFileReport {
	r := scanFileReport{Path: path}

	raw, err := container.ReadFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	f, err := container.Read(raw)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Version = f.Version.String()

	result, err := disasm.Disassemble(f, log)
	if err != nil {
		r.Error = err.Error()
		return r
	}

	r.Functions = int(f.Sections[container.SectionFunctions].ItemCount)
	r.Imports = countImports(f)
	r.ImportLines = utils.FormatSlice(importLines(result.Header), "; ")
	r.Statics = int(f.Sections[container.SectionStaticVars].ItemCount)
	return r
}

// importLines pulls the #import declarations out of an HKSM header,
// for a compact per-file summary.
func importLines(header string) []string {
	var lines []string
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#import") {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}

func countImports(f *container.File) int {
	return int(f.Sections[container.SectionImports].ItemCount)
}

func init() {
	scanCmd.Flags().StringVarP(&scanOutputPath, "output", "o", "", "Write the YAML report to this file instead of stdout")
}
