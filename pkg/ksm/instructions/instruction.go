package instructions

import (
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// Instruction is one decoded element of the flat instruction stream.
// Block structure (if/while/switch bodies, function bodies) is never
// represented here: it is implicit in jump targets and labels, exactly
// as it is on disk; indentation is purely a disassembler emission
// concern (see pkg/ksm/disasm).
type Instruction struct {
	OpCode   OpCode
	Disabled bool // the expression-disabling bit (word bit 8)
	Address  uint32

	// Operands holds raw identifier-shaped operands in shape-defined
	// order: e.g. ShapeAssign's assignee, ShapeID's single target,
	// ShapeCaseValue/ShapeCaseRange's literal words.
	Operands []Operand

	// Expressions holds expression-shaped operands in shape-defined
	// order: e.g. ShapeIf/ShapeWhile's condition, ShapeAssign's value,
	// ShapeCallDirect/Indirect's argument list (as a single Expression
	// whose Operands are individually call arguments, each possibly a
	// nested OperandOpCode).
	Expressions []*Expression

	// Targets holds resolved jump-target word addresses for
	// ShapeIf/ShapeElseIf/ShapeWhile, in encoding order.
	Targets []uint32
}

// DecodeInstruction decodes one instruction given its already-read
// opcode word.
func DecodeInstruction(opWord uint32, r *words.Reader, version Version, functions map[symbols.Identifier]*symbols.Function) (*Instruction, error) {
	disabled := DisableExpressionBit(opWord)
	op, ok := OpCodeFromBinary(opWord&0xff, version)
	if !ok {
		return &Instruction{OpCode: -1, Disabled: disabled}, nil
	}

	instr := &Instruction{OpCode: op, Disabled: disabled}
	shape := ShapeOf(op)

	readValueOperand := func() (*Expression, error) {
		if disabled {
			w, err := r.Next()
			if err != nil {
				return nil, err
			}
			d := Dispatch(w.Value, version, functions)
			return &Expression{Operands: []Operand{FromDecoded(d)}}, nil
		}
		return DecodeExpression(r, version, functions)
	}

	readRawIdentifier := func() (Operand, error) {
		w, err := r.Next()
		if err != nil {
			return Operand{}, err
		}
		return FromDecoded(Dispatch(w.Value, version, functions)), nil
	}

	readRawWord := func() (uint32, error) {
		w, err := r.Next()
		if err != nil {
			return 0, err
		}
		return w.Value, nil
	}

	readArgList := func() (*Expression, error) {
		terminator := closeSentinelFor[op]
		expr := &Expression{}
		for {
			w, err := r.Next()
			if err != nil {
				return nil, err
			}
			d := Dispatch(w.Value, version, functions)
			if d.Kind == KindOpCode && d.OpCode == terminator {
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

	switch shape {
	case ShapeNone:
		// no operands
	case ShapeID:
		op, err := readRawIdentifier()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, op)
	case ShapeExpr:
		expr, err := readValueOperand()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, expr)
	case ShapeAssign:
		assignee, err := readRawIdentifier()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, assignee)
		value, err := readValueOperand()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, value)
	case ShapeIf, ShapeElseIf, ShapeWhile:
		cond, err := readValueOperand()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, cond)
		targetCount := 3
		if shape == ShapeElseIf || shape == ShapeWhile {
			targetCount = 2
		}
		for i := 0; i < targetCount; i++ {
			t, err := readRawWord()
			if err != nil {
				return nil, err
			}
			instr.Targets = append(instr.Targets, t)
		}
	case ShapeCallDirect:
		callee, err := readRawIdentifier()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, callee)
		args, err := readArgList()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, args)
	case ShapeCallIndirect:
		callee, err := readValueOperand()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, callee)
		args, err := readArgList()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, args)
	case ShapeOpenCallable:
		callee, err := readRawIdentifier()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, callee)
		args, err := readArgList()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, args)
	case ShapeCaseValue:
		v, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, Operand{Kind: OperandRaw, Raw: v})
		target, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Targets = append(instr.Targets, target)
	case ShapeCaseRange:
		lo, err := readRawWord()
		if err != nil {
			return nil, err
		}
		hi, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, Operand{Kind: OperandRaw, Raw: lo}, Operand{Kind: OperandRaw, Raw: hi})
		target, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Targets = append(instr.Targets, target)
	case ShapeSwitch:
		cond, err := readValueOperand()
		if err != nil {
			return nil, err
		}
		instr.Expressions = append(instr.Expressions, cond)
		for i := 0; i < 2; i++ {
			t, err := readRawWord()
			if err != nil {
				return nil, err
			}
			instr.Targets = append(instr.Targets, t)
		}
	case ShapeCaseDefault:
		unused, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Operands = append(instr.Operands, Operand{Kind: OperandRaw, Raw: unused})
		target, err := readRawWord()
		if err != nil {
			return nil, err
		}
		instr.Targets = append(instr.Targets, target)
	}

	return instr, nil
}

// Encode writes this instruction's opcode word and operands. Jump
// targets are written as already-resolved final addresses; callers
// needing back-patch semantics during assembly use
// pkg/ksm/asm.Emitter instead, which wraps Encode with placeholder
// tracking.
func (instr *Instruction) Encode(w *words.Writer, version Version) error {
	opWord, err := EncodeOpCodeWord(instr.OpCode, version, instr.Disabled)
	if err != nil {
		return err
	}
	w.Append(opWord)

	shape := ShapeOf(instr.OpCode)
	switch shape {
	case ShapeID, ShapeOpenCallable:
		if len(instr.Operands) > 0 {
			if err := encodeOperand(w, instr.Operands[0], version); err != nil {
				return err
			}
		}
		if shape == ShapeOpenCallable && len(instr.Expressions) > 0 {
			if err := instr.Expressions[0].Encode(w, version); err != nil {
				return err
			}
		}
	case ShapeExpr:
		if len(instr.Expressions) > 0 {
			if err := instr.writeValueOperand(w, version, instr.Expressions[0]); err != nil {
				return err
			}
		}
	case ShapeAssign:
		if len(instr.Operands) > 0 {
			if err := encodeOperand(w, instr.Operands[0], version); err != nil {
				return err
			}
		}
		if len(instr.Expressions) > 0 {
			if err := instr.writeValueOperand(w, version, instr.Expressions[0]); err != nil {
				return err
			}
		}
	case ShapeIf, ShapeElseIf, ShapeWhile:
		if len(instr.Expressions) > 0 {
			if err := instr.writeValueOperand(w, version, instr.Expressions[0]); err != nil {
				return err
			}
		}
		for _, t := range instr.Targets {
			w.Append(t)
		}
	case ShapeCallDirect:
		if len(instr.Operands) > 0 {
			if err := encodeOperand(w, instr.Operands[0], version); err != nil {
				return err
			}
		}
		if len(instr.Expressions) > 0 {
			if err := instr.Expressions[0].Encode(w, version); err != nil {
				return err
			}
		}
	case ShapeCallIndirect:
		if len(instr.Expressions) > 0 {
			if err := instr.writeValueOperand(w, version, instr.Expressions[0]); err != nil {
				return err
			}
		}
		if len(instr.Expressions) > 1 {
			if err := instr.Expressions[1].Encode(w, version); err != nil {
				return err
			}
		}
	case ShapeCaseValue:
		if len(instr.Operands) > 0 {
			w.Append(instr.Operands[0].Raw)
		}
		for _, t := range instr.Targets {
			w.Append(t)
		}
	case ShapeCaseRange:
		for _, o := range instr.Operands {
			w.Append(o.Raw)
		}
		for _, t := range instr.Targets {
			w.Append(t)
		}
	case ShapeSwitch:
		if len(instr.Expressions) > 0 {
			if err := instr.writeValueOperand(w, version, instr.Expressions[0]); err != nil {
				return err
			}
		}
		for _, t := range instr.Targets {
			w.Append(t)
		}
	case ShapeCaseDefault:
		if len(instr.Operands) > 0 {
			w.Append(instr.Operands[0].Raw)
		}
		for _, t := range instr.Targets {
			w.Append(t)
		}
	}
	return nil
}

// writeValueOperand writes either a full expression, or (when Disabled)
// just its single raw operand word, mirroring the disable-expression
// bit's decode-time meaning.
func (instr *Instruction) writeValueOperand(w *words.Writer, version Version, expr *Expression) error {
	if instr.Disabled {
		if len(expr.Operands) > 0 {
			return encodeOperand(w, expr.Operands[0], version)
		}
		return nil
	}
	return expr.Encode(w, version)
}
