package symbols

import (
	"fmt"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
)

// Table is the per-translation symbol context: the four top-level
// maps plus a stack of active function scopes. It deliberately carries
// no package-level state (see DESIGN.md's Open Question resolution on
// global state), so one Table exists per translation and is discarded
// afterwards instead of being reset between uses.
type Table struct {
	Functions map[Identifier]*Function
	Imports   map[Identifier]*Import
	importsByName map[string]*Import

	ArraysByID      map[Identifier]*Array
	ArraysByAddress map[uint32]*Array
	ArraysByName    map[string]*Array

	Variables map[Identifier]*Variable
	constByKey map[string]*Variable

	FunctionStack []*Function

	// SlotOffset is the base identifier value carried in the #offset
	// directive, defaulting to 0x00100000 per the static/const
	// allocation rule.
	SlotOffset uint32
	// UsedIdentifierSlots is the shared counter drawn from by static
	// variables, functions, and labels.
	UsedIdentifierSlots uint32
	nextImportID        uint32

	// V132 selects v1.3.2 identifier/scope conventions where they
	// differ from v1.3.0 (temp-variable tag layout, and the
	// version-gated static/const scope assertion the original performs
	// on lookup).
V132 bool
}

const defaultSlotOffset = 0x00100000

// NewTable creates an empty symbol table for one translation.
func NewTable() *Table {
	return &Table{
		Functions:       make(map[Identifier]*Function),
		Imports:         make(map[Identifier]*Import),
		importsByName:   make(map[string]*Import),
		ArraysByID:      make(map[Identifier]*Array),
		ArraysByAddress: make(map[uint32]*Array),
		ArraysByName:    make(map[string]*Array),
		Variables:       make(map[Identifier]*Variable),
		constByKey:      make(map[string]*Variable),
		SlotOffset:      defaultSlotOffset,
		nextImportID:    uint32(FirstImportIdentifier),
	}
}

// PushFunction enters a function scope, making its local tables the
// first stop for variable and array lookup.
func (t *Table) PushFunction(f *Function) {
	t.FunctionStack = append(t.FunctionStack, f)
}

// PopFunction leaves the current function scope.
func (t *Table) PopFunction() {
	if len(t.FunctionStack) > 0 {
		t.FunctionStack = t.FunctionStack[:len(t.FunctionStack)-1]
	}
}

// CurrentFunction returns the active function scope, or nil at global
// scope.
func (t *Table) CurrentFunction() *Function {
	if len(t.FunctionStack) == 0 {
		return nil
	}
	return t.FunctionStack[len(t.FunctionStack)-1]
}

// LookupVariable resolves an identifier, consulting the active
// function's locals first and falling back to the global table -
// never the reverse. Implicit temp/local slots that were never
// explicitly declared are synthesized on the fly, matching the
// original's variableDictGet fallback behavior.
func (t *Table) LookupVariable(id Identifier) (*Variable, error) {
	if fn := t.CurrentFunction(); fn != nil {
		if v, ok := fn.LookupLocal(id); ok {
			return v, nil
		}
	}
	if v, ok := t.Variables[id]; ok {
		return v, nil
	}

	switch {
	case id.IsTempVar():
		return &Variable{Identifier: id, Alias: DefaultAlias(id), Scope: ScopeTemp}, nil
	case id.IsTempStaticVar():
		return &Variable{Identifier: id, Alias: DefaultAlias(id), Scope: ScopeTempStatic}, nil
	case id.IsTempVarAsRef():
		return &Variable{Identifier: id, Alias: "ref " + DefaultAlias(id), Scope: ScopeTemp}, nil
	case id.IsLocalVar():
		return &Variable{Identifier: id, Alias: DefaultAlias(id), Scope: ScopeLocal}, nil
	case t.V132 && id.IsTempVarV132():
		return &Variable{Identifier: id, Alias: DefaultAlias(id), Scope: ScopeTemp}, nil
	}

	return nil, kerr.MakeError(kerr.ErrUnknownSymbol, "variable identifier %#x", uint32(id))
}

// LookupArray resolves an array identifier, locals-then-global.
func (t *Table) LookupArray(id Identifier) (*Array, bool) {
	if fn := t.CurrentFunction(); fn != nil {
		if a, ok := fn.LocalArraysByID[id]; ok {
			return a, true
		}
	}
	a, ok := t.ArraysByID[id]
	return a, ok
}

// LookupArrayByName resolves an array by declared name, locals-then-global.
func (t *Table) LookupArrayByName(name string) (*Array, bool) {
	if fn := t.CurrentFunction(); fn != nil {
		if a, ok := fn.LocalArraysByName[name]; ok {
			return a, true
		}
	}
	a, ok := t.ArraysByName[name]
	return a, ok
}

// AllocateStatic mints a fresh static-variable identifier from the
// shared UsedIdentifierSlots counter.
func (t *Table) AllocateStatic() Identifier {
	id := NewStatic(t.UsedIdentifierSlots, t.SlotOffset)
	t.UsedIdentifierSlots++
	return id
}

// AllocateFunctionOrLabel mints an identifier from the same counter
// static variables draw from, per the shared-slot-space rule.
func (t *Table) AllocateFunctionOrLabel() Identifier {
	id := NewStatic(t.UsedIdentifierSlots, t.SlotOffset)
	t.UsedIdentifierSlots++
	return id
}

// GetConst returns the existing constant for (dataType, value) if one
// was already allocated, coalescing by the "<dataType>_<value>" key, or
// allocates and registers a fresh one.
func (t *Table) GetConst(dataType DataType, value any) *Variable {
	key := fmt.Sprintf("%s_%v", dataType.String(), value)
	if v, ok := t.constByKey[key]; ok {
		return v
	}
	slot := uint32(len(t.constByKey))
	id := NewConst(slot, t.SlotOffset)
	v := &Variable{
		Identifier:  id,
		Alias:       DefaultAlias(id),
		Value:       value,
		Scope:       ScopeConst,
		DataType:    dataType,
		HasDataType: true,
	}
	t.constByKey[key] = v
	t.Variables[id] = v
	return v
}

// GetOrCreateImport resolves an import by name, allocating a fresh
// identifier counting up from 0xA1 in first-use order on first
// reference, and incrementing TimesUsed on every reference thereafter.
func (t *Table) GetOrCreateImport(name string, dataType ImportDataType) *Import {
	if imp, ok := t.importsByName[name]; ok {
		imp.TimesUsed++
		return imp
	}
	id := Identifier(t.nextImportID)
	t.nextImportID++
	imp := &Import{Name: name, Identifier: id, TimesUsed: 1, DataType: dataType}
	t.importsByName[name] = imp
	t.Imports[id] = imp
	return imp
}

// MinMaxIdentifiers returns the minimum and maximum low-24-bit
// identifier values across every table, matching the original's
// getMinimumAndMaximumIdentifiers cross-table check. Returns
// (0xffffffff, 0) if every table is empty.
func (t *Table) MinMaxIdentifiers() (uint32, uint32) {
	min := uint32(0xffffffff)
	max := uint32(0)
	see := func(id Identifier) {
		low := id.Low24()
		if low < min {
			min = low
		}
		if low > max {
			max = low
		}
	}
	for id := range t.Variables {
		see(id)
	}
	for id := range t.Functions {
		see(id)
	}
	for id := range t.ArraysByID {
		see(id)
	}
	for id := range t.Imports {
		see(id)
	}
	return min, max
}
