package instructions

import (
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// Expression is a flat RPN operand stream, serialized with a trailing
// CloseExpression sentinel and otherwise carrying no grouping
// structure of its own (parentheses are literal operators).
type Expression struct {
	Operands []Operand
}

// DecodeExpression reads operand words until the CloseExpression
// sentinel, dispatching each one through the five-step rule.
func DecodeExpression(r *words.Reader, version Version, functions map[symbols.Identifier]*symbols.Function) (*Expression, error) {
	expr := &Expression{}
	for {
		w, err := r.Next()
		if err != nil {
			return nil, err
		}
		d := Dispatch(w.Value, version, functions)
		if d.Kind == KindOpCode && d.OpCode == OpCloseExpression {
			return expr, nil
		}
		if d.Kind == KindOpCode {
			nested, err := DecodeInstruction(w.Value, r, version, functions)
			if err != nil {
				return nil, err
			}
			expr.Operands = append(expr.Operands, Operand{Kind: OperandOpCode, Nested: nested, Raw: w.Value})
			continue
		}
		expr.Operands = append(expr.Operands, FromDecoded(d))
	}
}

// Encode writes the operand stream followed by the CloseExpression
// sentinel.
func (e *Expression) Encode(w *words.Writer, version Version) error {
	for _, op := range e.Operands {
		if err := encodeOperand(w, op, version); err != nil {
			return err
		}
	}
	closeWord, err := EncodeOpCodeWord(OpCloseExpression, version, false)
	if err != nil {
		return err
	}
	w.Append(closeWord)
	return nil
}

func encodeOperand(w *words.Writer, op Operand, version Version) error {
	switch op.Kind {
	case OperandVariable:
		w.Append(uint32(op.Variable))
	case OperandFunction:
		w.Append(uint32(op.Function))
	case OperandImport:
		w.Append(uint32(op.Import))
	case OperandOperator:
		w.Append(EncodeOperatorWord(op.Operator, version))
	case OperandOpCode:
		return op.Nested.Encode(w, version)
	default:
		w.Append(op.Raw)
	}
	return nil
}
