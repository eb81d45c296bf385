package instructions

import "github.com/Manu343726/ksmtool/pkg/ksm/symbols"

// DecodedKind classifies what a raw word means once dispatched,
// mirroring the five-step rule used by both disassembler decoding and
// expression decoding.
type DecodedKind int

const (
	KindUnknown DecodedKind = iota
	KindCalledFunction
	KindVariableReference
	KindOperator
	KindImportReference
	KindOpCode
)

// Decoded is the result of dispatching one raw word.
type Decoded struct {
	Kind       DecodedKind
	Function   symbols.Identifier
	Variable   symbols.Identifier
	Operator   Operator
	Import     symbols.Identifier
	OpCode     OpCode
	RawValue   uint32
}

// Dispatch applies the five-step opcode dispatch rule to a raw word:
//  1. a matching function identifier wins first (CalledFunction),
//  2. else nonzero high 16 bits means a variable reference,
//  3. else a low byte in the operator range means an operator,
//  4. else a low byte above the max opcode byte (or import-biased high
//     byte) means an import reference,
//  5. else a table lookup, defaulting to KindUnknown on miss.
func Dispatch(word uint32, version Version, functions map[symbols.Identifier]*symbols.Function) Decoded {
	id := symbols.Identifier(word)
	if _, ok := functions[id]; ok {
		return Decoded{Kind: KindCalledFunction, Function: id, RawValue: word}
	}

	if word>>16 != 0 {
		return Decoded{Kind: KindVariableReference, Variable: id, RawValue: word}
	}

	if op, ok := operatorFromBinary(word, version); ok {
		return Decoded{Kind: KindOperator, Operator: op, RawValue: word}
	}

	if id.IsImport() {
		return Decoded{Kind: KindImportReference, Import: id, RawValue: word}
	}

	if op, ok := OpCodeFromBinary(word&0xff, version); ok {
		return Decoded{Kind: KindOpCode, OpCode: op, RawValue: word}
	}

	return Decoded{Kind: KindUnknown, RawValue: word}
}

// EncodeOpCodeWord composes the encoded opcode word: opcode byte OR'd
// with the disable-expression bit at bit 8.
func EncodeOpCodeWord(op OpCode, version Version, disableExpression bool) (uint32, error) {
	value, ok := op.BinaryValue(version)
	if !ok {
		return 0, errOpCodeNotInVersion(op, version)
	}
	if disableExpression {
		value |= 1 << 8
	}
	return value, nil
}

// EncodeOperatorWord composes the encoded word for an operator glyph.
func EncodeOperatorWord(o Operator, version Version) uint32 {
	return operatorBinaryValue(o, version)
}

// DisableExpressionBit reports whether bit 8 (the expression-disabling
// bit) is set in an encoded opcode word.
func DisableExpressionBit(word uint32) bool {
	return word&(1<<8) != 0
}
