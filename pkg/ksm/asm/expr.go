package asm

import (
	"strconv"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
)

// precedence mirrors ordinary C-like operator precedence for the
// shunting-yard conversion from the text format's infix expressions to
// the binary format's flat RPN operand stream.
var precedence = map[instructions.Operator]int{
	instructions.LogicalOr:        1,
	instructions.LogicalAnd:       2,
	instructions.BitOr:            3,
	instructions.BitXor:           4,
	instructions.BitAnd:           5,
	instructions.Equal:            6,
	instructions.NotEqual:         6,
	instructions.GreaterThan:      7,
	instructions.LessThan:         7,
	instructions.GreaterThanOrEqual: 7,
	instructions.LessThanOrEqual:  7,
	instructions.ShiftLeft:        8,
	instructions.ShiftRight:       8,
	instructions.Add:              9,
	instructions.Subtract:         9,
	instructions.Multiply:         10,
	instructions.Divide:           10,
	instructions.Modulo:           10,
}

// parseExpression consumes tokens up to (but not including) a
// statement terminator (";", "{", "}", ",", or ")" at depth 0; line
// breaks are skipped), converting infix to the flat RPN operand stream
// the binary form requires via the shunting-yard algorithm.
func (p *Parser) parseExpression() (*instructions.Expression, error) {
	var output []instructions.Operand
	var opStack []instructions.Operator
	depth := 0

	popToOutput := func() {
		op := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		output = append(output, instructions.Operand{Kind: instructions.OperandOperator, Operator: op})
	}

	for {
		p.lx.SkipNewlines()
		t := p.lx.Peek(0)
		if t.Kind == TokEOF {
			break
		}
		if t.Kind == TokDelimiter && (t.Text == ";" || t.Text == "{" || t.Text == "," || t.Text == "}") {
			break
		}
		if t.Kind == TokDelimiter && t.Text == ")" && depth == 0 {
			break
		}

		switch t.Kind {
		case TokNumber:
			p.lx.Next()
			output = append(output, numberOperand(t, p.table))
		case TokString:
			p.lx.Next()
			v := p.table.GetConst(symbols.DataTypeString, t.Text)
			output = append(output, instructions.Operand{Kind: instructions.OperandVariable, Variable: v.Identifier})
		case TokIdent:
			if t.Text == "true" || t.Text == "false" {
				p.lx.Next()
				v := p.table.GetConst(symbols.DataTypeBool, t.Text == "true")
				output = append(output, instructions.Operand{Kind: instructions.OperandVariable, Variable: v.Identifier})
				continue
			}
			if t.Text == "self" {
				p.lx.Next()
				v := p.table.GetConst(symbols.DataTypeMe, nil)
				output = append(output, instructions.Operand{Kind: instructions.OperandVariable, Variable: v.Identifier})
				continue
			}
			if p.lx.Peek(1).Kind == TokDelimiter && p.lx.Peek(1).Text == "(" {
				nested, err := p.parseCallOperand()
				if err != nil {
					return nil, err
				}
				output = append(output, instructions.Operand{Kind: instructions.OperandOpCode, Nested: nested})
				continue
			}
			p.lx.Next()
			id := p.resolveName(t.Text)
			output = append(output, instructions.Operand{Kind: instructions.OperandVariable, Variable: id})
		case TokOperator:
			p.lx.Next()
			op, ok := instructions.OperatorFromGlyph(t.Text)
			if !ok {
				return nil, kerr.MakeError(kerr.ErrUnexpectedToken, "unknown operator %q", t.Text)
			}
			for len(opStack) > 0 && opStack[len(opStack)-1] != instructions.OpenParen && precedence[opStack[len(opStack)-1]] >= precedence[op] {
				popToOutput()
			}
			opStack = append(opStack, op)
		case TokDelimiter:
			switch t.Text {
			case "(":
				p.lx.Next()
				depth++
				opStack = append(opStack, instructions.OpenParen)
			case ")":
				p.lx.Next()
				depth--
				for len(opStack) > 0 && opStack[len(opStack)-1] != instructions.OpenParen {
					popToOutput()
				}
				if len(opStack) == 0 {
					return nil, kerr.MakeError(kerr.ErrUnmatchedBrace, "unmatched )")
				}
				opStack = opStack[:len(opStack)-1] // discard '('
			default:
				return nil, kerr.MakeError(kerr.ErrUnexpectedToken, "unexpected %q in expression", t.Text)
			}
		}
	}

	for len(opStack) > 0 {
		popToOutput()
	}

	return &instructions.Expression{Operands: output}, nil
}

func numberOperand(t Token, table *symbols.Table) instructions.Operand {
	var v *symbols.Variable
	if t.IsHex {
		n, _ := strconv.ParseUint(t.Text[2:], 16, 32)
		v = table.GetConst(symbols.DataTypeHex, uint32(n))
	} else if containsDot(t.Text) {
		f, _ := strconv.ParseFloat(t.Text, 32)
		v = table.GetConst(symbols.DataTypeFloat, float32(f))
	} else {
		n, _ := strconv.ParseInt(t.Text, 10, 32)
		v = table.GetConst(symbols.DataTypeInt, int32(n))
	}
	return instructions.Operand{Kind: instructions.OperandVariable, Variable: v.Identifier}
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

// resolveName resolves a bare identifier token to its symbol
// identifier: a local/declared variable, a global static, an import,
// or (last resort) a fresh import registration, matching the original
// readCallable/readVariable fallback chain.
func (p *Parser) resolveName(name string) symbols.Identifier {
	if fn := p.table.CurrentFunction(); fn != nil {
		for _, v := range fn.DeclaredLocals {
			if v.Name != nil && *v.Name == name {
				return v.Identifier
			}
		}
	}
	for id, v := range p.table.Variables {
		if v.Name != nil && *v.Name == name {
			return id
		}
	}
	if a, ok := p.table.LookupArrayByName(name); ok {
		return a.Identifier
	}
	imp := p.table.GetOrCreateImport(name, symbols.ImportInt)
	return imp.Identifier
}
