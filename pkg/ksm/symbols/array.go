package symbols

// ArrayDataType is the element type of an array definition.
type ArrayDataType int

const (
	ArrayVariable ArrayDataType = iota
	ArrayInt
	ArrayFloat
	ArrayBool
)

// Array is one entry in the array symbol table, living either in the
// global table or in exactly one function's local table, never both.
type Array struct {
	Name       string
	Length     uint32
	Identifier Identifier
	Address    uint32
	Values     []any // int32 | float32 | bool | *instructions.Expression, resolved by caller
	DataType   ArrayDataType
}
