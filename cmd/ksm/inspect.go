package ksm

import (
	"fmt"
	"os"
	"sort"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/disasm"
	"github.com/Manu343726/ksmtool/pkg/utils"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect file.ksm",
	Short: "Interactively browse a .ksm file's sections and symbol tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func runInspect(path string) error {
	color.New(color.FgHiBlack).Fprintln(os.Stderr, "1: summary  2: body  3: header  q: quit")

	raw, err := container.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := container.Read(raw)
	if err != nil {
		return err
	}

	log := diag.Discard()
	result, err := disasm.Disassemble(f, log)
	if err != nil {
		return err
	}

	app := tview.NewApplication()

	summary := tview.NewTextView().SetDynamicColors(true)
	fmt.Fprintf(summary, "[yellow]%s[white]\nversion: %s\n", path, f.Version.String())
	for _, kind := range sortedSectionKinds(f) {
		sec := f.Sections[kind]
		fmt.Fprintf(summary, "[cyan]section %d[white]: %d item(s), %d word(s)\n", kind, sec.ItemCount, len(sec.Words))
	}

	body := tview.NewTextView().SetDynamicColors(true).
		SetText(tview.TranslateANSI(utils.HighlightCCode(result.Body)))
	header := tview.NewTextView().SetDynamicColors(false).SetText(result.Header)

	pages := tview.NewPages().
		AddPage("summary", summary, true, true).
		AddPage("body", body, true, false).
		AddPage("header", header, true, false)

	pages.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case '1':
			pages.SwitchToPage("summary")
		case '2':
			pages.SwitchToPage("body")
		case '3':
			pages.SwitchToPage("header")
		case 'q':
			app.Stop()
		}
		return event
	})

	return app.SetRoot(pages, true).Run()
}

func sortedSectionKinds(f *container.File) []container.SectionKind {
	kinds := make([]container.SectionKind, 0, len(f.Sections))
	for k := range f.Sections {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
