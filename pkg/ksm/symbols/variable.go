package symbols

import "fmt"

// VariableScope classifies where a variable's storage lives.
type VariableScope int

const (
	ScopeUnknown VariableScope = iota
	ScopeTemp
	ScopeLocal
	ScopeStatic
	ScopeConst
	ScopeGlobal
	ScopeTempStatic
)

func (s VariableScope) String() string {
	switch s {
	case ScopeTemp:
		return "temp"
	case ScopeLocal:
		return "local"
	case ScopeStatic:
		return "static"
	case ScopeConst:
		return "const"
	case ScopeGlobal:
		return "global"
	case ScopeTempStatic:
		return "tstatic"
	default:
		return "unknown"
	}
}

// DataType is the set of primitive storage types a Variable may hold.
type DataType int

const (
	DataTypeFloat DataType = iota
	DataTypeInt
	DataTypeHex
	DataTypeString
	DataTypeAlloc
	DataTypeRef
	DataTypePtr
	DataTypeBool
	DataTypeFunc
	DataTypeAntistring
	DataTypeMe
	DataTypeTable
	DataTypeNone
	DataTypeNoInit
	DataTypeUser
)

// dataTypeWords maps the on-disk flags-byte value to a DataType and
// back, mirroring the original's dataTypes dict (0x00-0x0e, and 0x14
// for "user").
var dataTypeWords = map[uint32]DataType{
	0x00: DataTypeFloat,
	0x01: DataTypeInt,
	0x02: DataTypeHex,
	0x03: DataTypeString,
	0x04: DataTypeAlloc,
	0x05: DataTypeRef,
	0x06: DataTypePtr,
	0x07: DataTypeBool,
	0x08: DataTypeFunc,
	0x0a: DataTypeAntistring,
	0x0b: DataTypeMe,
	0x0c: DataTypeTable,
	0x0d: DataTypeNone,
	0x0e: DataTypeNoInit,
	0x14: DataTypeUser,
}

var dataTypeNames = map[DataType]string{
	DataTypeFloat:      "float",
	DataTypeInt:        "int",
	DataTypeHex:        "hex",
	DataTypeString:     "string",
	DataTypeAlloc:      "alloc",
	DataTypeRef:        "ref",
	DataTypePtr:        "ptr",
	DataTypeBool:       "bool",
	DataTypeFunc:       "func",
	DataTypeAntistring: "antistring",
	DataTypeMe:         "me",
	DataTypeTable:      "table",
	DataTypeNone:       "none",
	DataTypeNoInit:     "noinit",
	DataTypeUser:       "user",
}

var dataTypeFromName map[string]DataType
var dataTypeWordFromType map[DataType]uint32

func init() {
	dataTypeFromName = make(map[string]DataType, len(dataTypeNames))
	for k, v := range dataTypeNames {
		dataTypeFromName[v] = k
	}
	dataTypeWordFromType = make(map[DataType]uint32, len(dataTypeWords))
	for k, v := range dataTypeWords {
		dataTypeWordFromType[v] = k
	}
}

// DataTypeFromWord decodes the on-disk flags-byte value.
func DataTypeFromWord(flags uint32) (DataType, bool) {
	dt, ok := dataTypeWords[flags&0xff]
	return dt, ok
}

// Word encodes a DataType back to its on-disk flags-byte value.
func (d DataType) Word() uint32 { return dataTypeWordFromType[d] }

func (d DataType) String() string { return dataTypeNames[d] }

// DataTypeFromString parses a textual data type keyword.
func DataTypeFromString(s string) (DataType, bool) {
	dt, ok := dataTypeFromName[s]
	return dt, ok
}

// Variable is a single entry in the variable symbol table: a temp,
// local, static, const, global, or temp-static slot.
type Variable struct {
	Name       *string
	Identifier Identifier
	Alias      string
	Value      any // int32 | float32 | string | bool | nil
	Scope      VariableScope
	DataType   DataType
	HasDataType bool
}

// Alias renders the default alias for a variable lacking a declared
// name: var_<hex(id)> for named-but-unloaded slots, tempVar<N> /
// tStaticVar<N> / localVar<N> for implicit slots.
func DefaultAlias(id Identifier) string {
	switch {
	case id.IsTempVar(), id.IsTempVarAsRef(), id.IsTempVarV132():
		return fmt.Sprintf("tempVar%d", id.TempSlot())
	case id.IsTempStaticVar():
		return fmt.Sprintf("tStaticVar%d", id.TempSlot())
	case id.IsLocalVar():
		return fmt.Sprintf("localVar%d", id.LocalSlot())
	default:
		return fmt.Sprintf("var_%#x", uint32(id))
	}
}
