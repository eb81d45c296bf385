// Package asm implements the reverse direction of pkg/ksm/disasm:
// lexing and parsing CKSM/HKSM text, allocating identifiers on demand,
// back-patching control-flow jump targets, and laying out the nine
// container sections in the version's fixed order.
package asm

import (
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// Assemble parses a CKSM body plus its HKSM header and produces a
// fully populated container.File, ready for container.Build.
func Assemble(body, header string, version instructions.Version) (*container.File, error) {
	table := symbols.NewTable()
	table.V132 = version == instructions.V132

	if err := parseHeader(header, table, version); err != nil {
		return nil, err
	}

	emit := NewEmitter(version)
	parser := NewParser(body, table, emit, version)
	if err := parser.ParseBody(); err != nil {
		return nil, err
	}

	f := container.NewFile(version)
	f.Sections[container.SectionFunctions] = buildFunctionsSection(table, version)
	f.Sections[container.SectionStaticVars] = buildVariablesSection(table, symbols.ScopeStatic)
	f.Sections[container.SectionArrays] = buildArraysSection(table)
	f.Sections[container.SectionConstVars] = buildVariablesSection(table, symbols.ScopeConst)
	f.Sections[container.SectionImports] = buildImportsSection(table, version)
	f.Sections[container.SectionGlobalVars] = &container.Section{}
	f.Sections[container.SectionInstructions] = &container.Section{ItemCount: uint32(len(emit.W.Words())), Words: emit.W.Words()}

	if version == container.V132 {
		w := words.NewWriter()
		w.WriteString(f.Summary.SourceFileName)
		f.Sections[container.SectionSummary] = &container.Section{ItemCount: 0xffffffff, Words: w.Words()}
	} else {
		f.Sections[container.SectionSummary] = &container.Section{}
	}

	return f, nil
}
