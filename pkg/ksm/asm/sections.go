package asm

import (
	"sort"

	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// buildVariablesSection serializes every table variable of the given
// scope in reverse declaration order (descending identifier, since
// identifiers are allocated in ascending order), inverting
// disasm.loadVariables.
func buildVariablesSection(table *symbols.Table, scope symbols.VariableScope) *container.Section {
	w := words.NewWriter()
	count := uint32(0)
	var vars []*symbols.Variable
	for _, v := range table.Variables {
		if v.Scope == scope {
			vars = append(vars, v)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Identifier > vars[j].Identifier })
	for _, v := range vars {
		count++
		if v.Name != nil {
			w.Append(0xffffffff)
		} else {
			w.Append(0)
		}
		w.Append(uint32(v.Identifier))
		w.Append(v.DataType.Word())

		switch v.DataType {
		case symbols.DataTypeFloat:
			f, _ := v.Value.(float32)
			w.Append(words.EncodeFloat32(f))
		case symbols.DataTypeInt:
			n, _ := v.Value.(int32)
			w.Append(uint32(n))
		case symbols.DataTypeBool:
			b, _ := v.Value.(bool)
			if b {
				w.Append(1)
			} else {
				w.Append(0)
			}
		case symbols.DataTypeString:
			w.Append(0)
		default:
			if n, ok := v.Value.(uint32); ok {
				w.Append(n)
			} else {
				w.Append(0)
			}
		}

		if v.Name != nil {
			w.WriteString(*v.Name)
		}
		if v.DataType == symbols.DataTypeString {
			s, _ := v.Value.(string)
			w.WriteString(s)
		}
	}
	return &container.Section{ItemCount: count, Words: w.Words()}
}

// buildArraysSection serializes every declared array, inverting
// disasm.loadArrays.
func buildArraysSection(table *symbols.Table) *container.Section {
	w := words.NewWriter()
	count := uint32(0)
	for _, a := range table.ArraysByID {
		count++
		w.Append(0xffffffff)
		w.Append(uint32(a.Identifier))
		w.Append(uint32(a.DataType))
		w.Append(a.Length)
		w.Append(a.Address)
		w.WriteString(a.Name)
	}
	return &container.Section{ItemCount: count, Words: w.Words()}
}

// buildImportsSection serializes every referenced import, inverting
// disasm.loadImports.
func buildImportsSection(table *symbols.Table, version container.Version) *container.Section {
	w := words.NewWriter()
	count := uint32(0)
	v132 := version == container.V132
	for _, imp := range table.Imports {
		count++
		w.Append(uint32(imp.Identifier))
		switch imp.DataType {
		case symbols.ImportInt:
			w.Append(0x02)
		case symbols.ImportThread:
			w.Append(0x05)
		default:
			w.Append(0x01)
		}
		if !v132 {
			w.Append(imp.TimesUsed)
			fileID := uint32(0)
			if imp.FileID != nil {
				fileID = *imp.FileID
			}
			w.Append(fileID)
			unk := uint32(0)
			if imp.Unknown0 != nil {
				unk = *imp.Unknown0
			}
			w.Append(unk)
		}
		w.WriteString(imp.Name)
	}
	return &container.Section{ItemCount: count, Words: w.Words()}
}

// buildFunctionsSection serializes every declared function, inverting
// disasm.loadFunctions.
func buildFunctionsSection(table *symbols.Table, version container.Version) *container.Section {
	w := words.NewWriter()
	count := uint32(0)
	v132 := version == container.V132
	for _, fn := range table.Functions {
		count++
		w.Append(0xffffffff)
		w.Append(uint32(fn.Identifier))
		if fn.IsPublic {
			w.Append(1)
		} else {
			w.Append(0)
		}
		w.Append(fn.CodeOffset)
		w.Append(fn.CodeEnd)
		if !v132 {
			w.Append(fn.TempVarFlags)
		}

		accumulatorID := uint32(0)
		if fn.Accumulator != nil {
			accumulatorID = uint32(fn.Accumulator.Identifier)
		}
		w.Append(accumulatorID)
		specialLabelID := uint32(0)
		if fn.SpecialLabel != nil {
			specialLabelID = *fn.SpecialLabel
		}
		w.Append(specialLabelID)

		w.WriteString(fn.Name)

		w.Append(uint32(len(fn.LabelOrder)))
		for _, lbl := range fn.LabelOrder {
			w.Append(0)
			id := uint32(0)
			if lbl.Identifier != nil {
				id = uint32(*lbl.Identifier)
			}
			w.Append(id)
			addr := uint32(0)
			if lbl.Address != nil {
				addr = *lbl.Address
			}
			w.Append(addr)
		}
	}
	return &container.Section{ItemCount: count, Words: w.Words()}
}
