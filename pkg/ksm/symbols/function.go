package symbols

// labelAliasSuffixes mirrors the original's label alias alphabet,
// indexed from the end backwards as labels are allocated.
const labelAliasSuffixes = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Label names a point in a function's instruction stream. InstructionIndex
// is -1 until the label's defining instruction has been placed.
type Label struct {
	Identifier       *Identifier
	Address          *uint32
	Alias            string
	InstructionIndex int
}

// Function is one entry in the function symbol table, owning its own
// nested local variable, local array, and label tables.
type Function struct {
	Name          string
	Identifier    Identifier
	IsPublic      bool
	TempVarFlags  uint32
	Accumulator   *Variable
	LabelsByID    map[Identifier]*Label
	LabelsByAddr  map[uint32]*Label
	LabelsByName  map[string]*Label
	// LabelOrder preserves allocation order for deterministic Functions
	// section serialization (label table iteration must not depend on Go
	// map order).
	LabelOrder []*Label
	LocalArraysByID      map[Identifier]*Array
	LocalArraysByAddress map[uint32]*Array
	LocalArraysByName    map[string]*Array
	DeclaredLocals []*Variable
	LocalsByID      map[Identifier]*Variable
	SpecialLabel   *uint32 // meaning unknown; bit layout preserved, not interpreted
	CodeOffset     uint32
	CodeEnd        uint32
}

// NewFunction creates an empty function scope ready to receive local
// declarations during assembly, or be populated during disassembly.
func NewFunction(name string, id Identifier, isPublic bool) *Function {
	return &Function{
		Name:                 name,
		Identifier:           id,
		IsPublic:             isPublic,
		LabelsByID:           make(map[Identifier]*Label),
		LabelsByAddr:         make(map[uint32]*Label),
		LabelsByName:         make(map[string]*Label),
		LocalArraysByID:      make(map[Identifier]*Array),
		LocalArraysByAddress: make(map[uint32]*Array),
		LocalArraysByName:    make(map[string]*Array),
		LocalsByID:           make(map[Identifier]*Variable),
	}
}

// AllocateTempVar scans TempVarFlags for the lowest clear bit, sets it,
// and returns the composed temp-variable identifier. v132 selects the
// v1.3.2 tag layout (0x40000100 | slot) over the v1.3.0 one.
func (f *Function) AllocateTempVar(v132 bool) Identifier {
	for slot := uint32(0); slot < 32; slot++ {
		if f.TempVarFlags&(1<<slot) == 0 {
			f.TempVarFlags |= 1 << slot
			if v132 {
				return NewTempVarV132(slot)
			}
			return NewTempVar(slot)
		}
	}
	// Slots exhausted: the original has no explicit bound beyond the
	// 32-bit flags word, so slot indices beyond 31 simply alias.
	return NewTempVar(0)
}

// MakeLocalVar appends a new local variable and returns its identifier,
// computed as (len(declaredLocals) << 8) | 0x20000000.
func (f *Function) MakeLocalVar(name string, dataType DataType) *Variable {
	slot := uint32(len(f.DeclaredLocals))
	id := NewLocalVar(slot)
	v := &Variable{
		Name:        &name,
		Identifier:  id,
		Alias:       DefaultAlias(id),
		Scope:       ScopeLocal,
		DataType:    dataType,
		HasDataType: true,
	}
	f.DeclaredLocals = append(f.DeclaredLocals, v)
	f.LocalsByID[id] = v
	return v
}

// GetAccumulator lazily creates, on first call within a function, the
// implicit local named "accumulator" that receives the return value of
// every called function, and returns the same variable on every
// subsequent call (accumulator idempotence).
func (f *Function) GetAccumulator() *Variable {
	if f.Accumulator == nil {
		f.Accumulator = f.MakeLocalVar("accumulator", DataTypeNone)
	}
	return f.Accumulator
}

// LabelAlias renders the disassembly-time alias for the label at
// position index among a function's count labels, matching the
// original's label{labelAliasSuffixes[labelCount - labelIndex - 1]}
// scheme: the suffix alphabet is indexed backwards from the function's
// total label count, not from an allocation-order cursor.
func LabelAlias(index, count uint32) string {
	suffix := count - index - 1
	alphabet := labelAliasSuffixes
	if int(suffix) >= len(alphabet) {
		suffix %= uint32(len(alphabet))
	}
	return "label" + string(alphabet[len(alphabet)-1-suffix])
}

// LookupLocal finds a local variable in this function only (no global
// fallback); used by the symbol table's scoped-lookup chain.
func (f *Function) LookupLocal(id Identifier) (*Variable, bool) {
	v, ok := f.LocalsByID[id]
	return v, ok
}
