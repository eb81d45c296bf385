package instructions

import "github.com/Manu343726/ksmtool/pkg/ksm/symbols"

// OperandKind classifies one operand's decoded shape.
type OperandKind int

const (
	OperandVariable OperandKind = iota
	OperandFunction
	OperandImport
	OperandOperator
	OperandOpCode // a nested instruction appearing where an operand is expected
	OperandRaw    // an undecoded raw word (e.g. jump placeholders pre-patch)
)

// Operand is one element of an expression's flat RPN stream, or one of
// an instruction's fixed operand slots.
type Operand struct {
	Kind     OperandKind
	Variable symbols.Identifier
	Function symbols.Identifier
	Import   symbols.Identifier
	Operator Operator
	Nested   *Instruction
	Raw      uint32
}

// FromDecoded converts a dispatch result into an Operand, for the
// common case of reading one operand word from the stream.
func FromDecoded(d Decoded) Operand {
	switch d.Kind {
	case KindVariableReference, KindUnknown:
		return Operand{Kind: OperandVariable, Variable: d.Variable, Raw: d.RawValue}
	case KindCalledFunction:
		return Operand{Kind: OperandFunction, Function: d.Function, Raw: d.RawValue}
	case KindImportReference:
		return Operand{Kind: OperandImport, Import: d.Import, Raw: d.RawValue}
	case KindOperator:
		return Operand{Kind: OperandOperator, Operator: d.Operator, Raw: d.RawValue}
	default:
		return Operand{Kind: OperandRaw, Raw: d.RawValue}
	}
}
