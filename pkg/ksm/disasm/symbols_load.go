package disasm

import (
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// loadVariables ports the original's readVariableFromKsm/parseVariables
// word-by-word binary layout: name-presence flag, identifier, flags
// (low byte is the data type), value word, optional name string,
// optional string value.
func loadVariables(sec *container.Section, scope symbols.VariableScope, table *symbols.Table) error {
	r := words.NewReader(sec.Words)
	for i := uint32(0); i < sec.ItemCount; i++ {
		flagWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading variable %d name-presence flag", i)
		}
		hasName := flagWord.Value == 0xffffffff
		if !hasName && flagWord.Value != 0 {
			return kerr.MakeError(kerr.ErrBadPadding, "variable %d name-presence flag %#x", i, flagWord.Value)
		}

		idWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading variable %d identifier", i)
		}
		id := symbols.Identifier(idWord.Value)

		flagsWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading variable %d flags", i)
		}
		dataType, ok := symbols.DataTypeFromWord(flagsWord.Value)
		if !ok {
			return kerr.MakeError(kerr.ErrUnknownSymbol, "variable %d unknown data type flags %#x", i, flagsWord.Value)
		}

		valueWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading variable %d value", i)
		}

		var value any
		hasString := false
		switch dataType {
		case symbols.DataTypeFloat:
			value = words.RoundSignificant(words.Float32(valueWord.Value), 6)
		case symbols.DataTypeInt:
			value = words.Int32(valueWord.Value)
		case symbols.DataTypeHex:
			value = valueWord.Value
		case symbols.DataTypeString:
			hasString = true
		case symbols.DataTypeBool:
			value = valueWord.Value != 0
		default:
			value = valueWord.Value
		}

		var name *string
		if hasName {
			s, err := r.ReadString()
			if err != nil {
				return kerr.MakeError(err, "reading variable %d name", i)
			}
			name = &s
		}
		if hasString {
			s, err := r.ReadString()
			if err != nil {
				return kerr.MakeError(err, "reading variable %d string value", i)
			}
			value = s
		}

		v := &symbols.Variable{
			Name:        name,
			Identifier:  id,
			Alias:       symbols.DefaultAlias(id),
			Value:       value,
			Scope:       scope,
			DataType:    dataType,
			HasDataType: true,
		}
		table.Variables[id] = v
	}
	return nil
}

func loadStaticVars(f *container.File, table *symbols.Table) error {
	return loadVariables(f.Sections[container.SectionStaticVars], symbols.ScopeStatic, table)
}

func loadConstVars(f *container.File, table *symbols.Table) error {
	return loadVariables(f.Sections[container.SectionConstVars], symbols.ScopeConst, table)
}

// loadArrays ports the original's readArrayDefinitionFromKsm: padding
// sentinel, identifier, discarded datatype word, length, address, name.
func loadArrays(f *container.File, table *symbols.Table) error {
	sec := f.Sections[container.SectionArrays]
	r := words.NewReader(sec.Words)
	for i := uint32(0); i < sec.ItemCount; i++ {
		padding, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading array %d padding", i)
		}
		if padding.Value != 0xffffffff {
			return kerr.MakeError(kerr.ErrBadPadding, "array %d padding %#x", i, padding.Value)
		}
		idWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading array %d identifier", i)
		}
		if _, err := r.Next(); err != nil { // datatype word, discarded per original
			return kerr.MakeError(err, "reading array %d datatype", i)
		}
		lengthWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading array %d length", i)
		}
		addrWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading array %d address", i)
		}
		name, err := r.ReadString()
		if err != nil {
			return kerr.MakeError(err, "reading array %d name", i)
		}

		id := symbols.Identifier(idWord.Value)
		a := &symbols.Array{Name: name, Length: lengthWord.Value, Identifier: id, Address: addrWord.Value}
		table.ArraysByID[id] = a
		table.ArraysByAddress[addrWord.Value] = a
		table.ArraysByName[name] = a
	}
	return nil
}

// loadImports ports the original's readImportDefinitionFromKsm, which
// differs in word layout between v1.3.0 (separate timesUsed, fileID
// and unknown0 words) and v1.3.2 (none of these three words).
func loadImports(f *container.File, table *symbols.Table) error {
	sec := f.Sections[container.SectionImports]
	r := words.NewReader(sec.Words)
	v132 := f.Version == container.V132
	for i := uint32(0); i < sec.ItemCount; i++ {
		idWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading import %d identifier", i)
		}
		typeWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading import %d type", i)
		}

		imp := &symbols.Import{Identifier: symbols.Identifier(idWord.Value)}
		switch typeWord.Value {
		case 0x02:
			imp.DataType = symbols.ImportInt
		case 0x05:
			imp.DataType = symbols.ImportThread
		default:
			imp.DataType = symbols.ImportFunction
		}

		if !v132 {
			usedWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading import %d timesUsed", i)
			}
			imp.TimesUsed = usedWord.Value
			fileIDWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading import %d fileID", i)
			}
			fileID := fileIDWord.Value
			imp.FileID = &fileID
			unkWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading import %d unknown0", i)
			}
			unk := unkWord.Value
			imp.Unknown0 = &unk
		}

		name, err := r.ReadString()
		if err != nil {
			return kerr.MakeError(err, "reading import %d name", i)
		}
		imp.Name = name

		table.Imports[imp.Identifier] = imp
	}
	return nil
}

// loadFunctions ports the original's readFunctionDefinitionFromKsm,
// which differs in word layout between versions in whether
// tempVarFlags is present on disk (v1.3.0 only; v1.3.2 implies every
// bit set).
func loadFunctions(f *container.File, table *symbols.Table) error {
	sec := f.Sections[container.SectionFunctions]
	r := words.NewReader(sec.Words)
	v132 := f.Version == container.V132
	for i := uint32(0); i < sec.ItemCount; i++ {
		padding, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d padding", i)
		}
		if padding.Value != 0xffffffff {
			return kerr.MakeError(kerr.ErrBadPadding, "function %d padding %#x", i, padding.Value)
		}
		idWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d identifier", i)
		}
		visWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d visibility", i)
		}
		offsetWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d codeOffset", i)
		}
		endWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d codeEnd", i)
		}

		fn := symbols.NewFunction("", symbols.Identifier(idWord.Value), visWord.Value != 0)
		fn.CodeOffset = offsetWord.Value
		fn.CodeEnd = endWord.Value

		if !v132 {
			flagsWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading function %d tempVarFlags", i)
			}
			fn.TempVarFlags = flagsWord.Value
		} else {
			fn.TempVarFlags = 0xffffffff
		}

		accumulatorWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d accumulatorID", i)
		}
		if accumulatorWord.Value != 0 {
			accID := symbols.Identifier(accumulatorWord.Value)
			fn.Accumulator = &symbols.Variable{
				Name:        strPtr("accumulator"),
				Identifier:  accID,
				Alias:       symbols.DefaultAlias(accID),
				Scope:       symbols.ScopeLocal,
				DataType:    symbols.DataTypeNone,
				HasDataType: true,
			}
			fn.LocalsByID[accID] = fn.Accumulator
		}

		specialLabelWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d specialLabelID", i)
		}
		if specialLabelWord.Value != 0 {
			v := specialLabelWord.Value
			fn.SpecialLabel = &v
		}

		name, err := r.ReadString()
		if err != nil {
			return kerr.MakeError(err, "reading function %d name", i)
		}
		fn.Name = name

		labelCountWord, err := r.Next()
		if err != nil {
			return kerr.MakeError(err, "reading function %d labelCount", i)
		}
		for j := uint32(0); j < labelCountWord.Value; j++ {
			if _, err := r.Next(); err != nil { // label padding, discarded
				return kerr.MakeError(err, "reading function %d label %d padding", i, j)
			}
			labelIDWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading function %d label %d identifier", i, j)
			}
			labelAddrWord, err := r.Next()
			if err != nil {
				return kerr.MakeError(err, "reading function %d label %d address", i, j)
			}
			labelID := symbols.Identifier(labelIDWord.Value)
			addr := labelAddrWord.Value
			lbl := &symbols.Label{
				Identifier:       &labelID,
				Address:          &addr,
				Alias:            symbols.LabelAlias(j, labelCountWord.Value),
				InstructionIndex: int(addr),
			}
			fn.LabelsByID[labelID] = lbl
			fn.LabelsByAddr[addr] = lbl
			fn.LabelOrder = append(fn.LabelOrder, lbl)
		}

		table.Functions[fn.Identifier] = fn
	}
	return nil
}

func strPtr(s string) *string { return &s }
