package asm

import (
	"strconv"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
)

// Parser drives the body text parse, allocating identifiers on demand
// and emitting instruction words via an Emitter.
type Parser struct {
	lx      *Lexer
	table   *symbols.Table
	emit    *Emitter
	version instructions.Version
}

// NewParser prepares a parser over CKSM body source, sharing the
// symbol table and emitter the header parse and section builder also
// use.
func NewParser(source string, table *symbols.Table, emit *Emitter, version instructions.Version) *Parser {
	return &Parser{lx: NewLexer(source), table: table, emit: emit, version: version}
}

// ParseBody parses every top-level declaration (functions and
// threads) until EOF, appending a trailing EndFile instruction,
// matching the original parseCppBodyFile driving loop.
func (p *Parser) ParseBody() error {
	for !p.lx.AtEOF() {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
	}
	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpEndFile})
}

func (p *Parser) parseTopLevel() error {
	t := p.lx.Peek(0)
	switch t.Text {
	case "public", "private":
		return p.parseFunction(t.Text == "public", false, false)
	case "thread":
		p.lx.Next()
		return p.parseFunction(false, true, false)
	case "child":
		p.lx.Next()
		if err := p.expectIdent("thread"); err != nil {
			return err
		}
		return p.parseFunction(false, true, true)
	case "global":
		return p.parseGlobalBlock()
	default:
		return kerr.MakeError(kerr.ErrUnexpectedToken, "unexpected top-level token %q", t.Text)
	}
}

func (p *Parser) parseGlobalBlock() error {
	p.lx.Next() // global
	if err := p.expectDelim("{"); err != nil {
		return err
	}
	if err := p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpGlobalCodeOpen}); err != nil {
		return err
	}
	for !p.atDelim("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}
	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpGlobalCodeClose})
}

func (p *Parser) parseFunction(isPublic, isThread, isChild bool) error {
	if !isThread {
		p.lx.Next() // public|private
	}
	nameTok := p.lx.Next()
	id := p.table.AllocateFunctionOrLabel()
	fn := symbols.NewFunction(nameTok.Text, id, isPublic)
	p.table.Functions[id] = fn
	p.table.PushFunction(fn)
	defer p.table.PopFunction()

	if err := p.expectDelim("("); err != nil {
		return err
	}
	args, err := p.parseArgList(")")
	if err != nil {
		return err
	}
	if err := p.expectDelim(")"); err != nil {
		return err
	}
	fn.CodeOffset = p.emit.W.Len()

	op := instructions.OpOpenFunction
	if isThread && isChild {
		op = instructions.OpOpenThreadChild
	} else if isThread {
		op = instructions.OpOpenThread
	}
	if err := p.emit.EmitInstruction(&instructions.Instruction{
		OpCode:      op,
		Operands:    []instructions.Operand{{Kind: instructions.OperandFunction, Function: id}},
		Expressions: []*instructions.Expression{args},
	}); err != nil {
		return err
	}

	if err := p.expectDelim("{"); err != nil {
		return err
	}
	for !p.atDelim("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}

	for _, lbl := range fn.LabelOrder {
		if lbl.InstructionIndex < 0 {
			return kerr.MakeError(kerr.ErrDanglingLabel, "label never defined in function %q", fn.Name)
		}
	}

	fn.CodeEnd = p.emit.W.Len()
	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpCloseFunction})
}

func (p *Parser) parseArgList(closer string) (*instructions.Expression, error) {
	expr := &instructions.Expression{}
	for !p.atDelim(closer) {
		sub, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		expr.Operands = append(expr.Operands, sub.Operands...)
		if p.atDelim(",") {
			p.lx.Next()
		}
	}
	return expr, nil
}

// builtinIDArgOps are builtins whose single argument is a bare
// identifier (array/variable), not a full expression.
var builtinIDArgOps = map[string]instructions.OpCode{
	"length":               instructions.OpGetArrayLength,
	"sleep_until_complete":  instructions.OpSleepUntilComplete,
	"is_incomplete":         instructions.OpIsChildThreadIncomplete,
}

// builtinExprArgOps are builtins whose single argument is a full
// expression.
var builtinExprArgOps = map[string]instructions.OpCode{
	"int":                instructions.OpCastToInteger,
	"float":              instructions.OpCastToFloatingPoint,
	"assert":             instructions.OpAssert,
	"format":             instructions.OpFormatString,
	"sleep_frames":        instructions.OpSleepFrames,
	"sleep_milliseconds":  instructions.OpSleepMilliseconds,
	"sleep_while":         instructions.OpSleepWhile,
	"type":               instructions.OpGetDataType,
}

// builtinNoArgOps are builtins taking no arguments at all.
var builtinNoArgOps = map[string]instructions.OpCode{
	"arg_count": instructions.OpGetArgumentCount,
}

func (p *Parser) parseCallOperand() (*instructions.Instruction, error) {
	nameTok := p.lx.Next()
	if err := p.expectDelim("("); err != nil {
		return nil, err
	}

	if op, ok := builtinIDArgOps[nameTok.Text]; ok {
		argTok := p.lx.Next()
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		id := p.resolveName(argTok.Text)
		return &instructions.Instruction{OpCode: op, Operands: []instructions.Operand{{Kind: instructions.OperandVariable, Variable: id}}}, nil
	}
	if op, ok := builtinNoArgOps[nameTok.Text]; ok {
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		return &instructions.Instruction{OpCode: op}, nil
	}
	if op, ok := builtinExprArgOps[nameTok.Text]; ok {
		args, err := p.parseArgList(")")
		if err != nil {
			return nil, err
		}
		if err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		return &instructions.Instruction{OpCode: op, Expressions: []*instructions.Expression{args}}, nil
	}

	args, err := p.parseArgList(")")
	if err != nil {
		return nil, err
	}
	if err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	id := p.resolveName(nameTok.Text)
	return &instructions.Instruction{
		OpCode:      instructions.OpCall,
		Operands:    []instructions.Operand{{Kind: instructions.OperandFunction, Function: id}},
		Expressions: []*instructions.Expression{args},
	}, nil
}

func (p *Parser) parseStatement() error {
	p.lx.SkipNewlines()
	t := p.lx.Peek(0)

	// label: NAME:
	if t.Kind == TokIdent && p.lx.Peek(1).Kind == TokDelimiter && p.lx.Peek(1).Text == ":" {
		return p.parseLabelDef()
	}

	switch t.Text {
	case "goto":
		return p.parseGoto()
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile()
	case "switch":
		return p.parseSwitch()
	case "return":
		p.lx.Next()
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpReturn})
	case "break":
		p.lx.Next()
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		op, err := p.emit.innermostBreakOp()
		if err != nil {
			return err
		}
		return p.emit.EmitInstruction(&instructions.Instruction{OpCode: op})
	case "continue":
		p.lx.Next()
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpContinueWhile})
	case "noop":
		p.lx.Next()
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpNoop})
	case "delete":
		p.lx.Next()
		nameTok := p.lx.Next()
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		id := p.resolveName(nameTok.Text)
		return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpDeleteVariable, Operands: []instructions.Operand{{Kind: instructions.OperandVariable, Variable: id}}})
	case "int_array", "float_array", "bool_array", "var_array":
		return p.parseArrayDecl(t.Text)
	}

	// Call as a statement: NAME(args);
	if t.Kind == TokIdent && p.lx.Peek(1).Kind == TokDelimiter && p.lx.Peek(1).Text == "(" {
		instr, err := p.parseCallOperand()
		if err != nil {
			return err
		}
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		return p.emit.EmitInstruction(instr)
	}

	// Assignment: NAME = expr;
	if t.Kind == TokIdent && p.lx.Peek(1).Kind == TokOperator && p.lx.Peek(1).Text == "=" {
		p.lx.Next()
		p.lx.Next()
		value, err := p.parseExpression()
		if err != nil {
			return err
		}
		if err := p.expectDelim(";"); err != nil {
			return err
		}
		id := p.resolveName(t.Text)
		value = p.wrapCallValue(value)
		return p.emit.EmitInstruction(&instructions.Instruction{
			OpCode:      instructions.OpAssignment,
			Operands:    []instructions.Operand{{Kind: instructions.OperandVariable, Variable: id}},
			Expressions: []*instructions.Expression{value},
		})
	}

	return kerr.MakeError(kerr.ErrUnexpectedToken, "unexpected statement token %q", t.Text)
}

// isCallOpCode reports whether op is one of the call-family opcodes
// that produce a return value an assignment can read back.
func isCallOpCode(op instructions.OpCode) bool {
	switch op {
	case instructions.OpCall, instructions.OpThreadCall, instructions.OpThreadCallChild,
		instructions.OpVariableCall, instructions.OpVariableThreadCall, instructions.OpVariableThreadCallChild:
		return true
	}
	return false
}

// wrapCallValue rewrites a bare call-valued assignment right-hand side
// (x = g();) into the GetNextFunctionReturn-prefixed form the binary
// format requires to read the call's return value, materializing the
// enclosing function's accumulator slot as a side effect.
func (p *Parser) wrapCallValue(value *instructions.Expression) *instructions.Expression {
	if len(value.Operands) != 1 || value.Operands[0].Kind != instructions.OperandOpCode || value.Operands[0].Nested == nil {
		return value
	}
	if !isCallOpCode(value.Operands[0].Nested.OpCode) {
		return value
	}
	if fn := p.table.CurrentFunction(); fn != nil {
		fn.GetAccumulator()
	}
	getNext := instructions.Operand{Kind: instructions.OperandOpCode, Nested: &instructions.Instruction{OpCode: instructions.OpGetNextFunctionReturn}}
	return &instructions.Expression{Operands: []instructions.Operand{getNext, value.Operands[0]}}
}

// parseLabelDef parses a "NAME:" label declaration, resolving a
// pending forward reference from an earlier goto if one exists, and
// rejecting a second definition of the same name.
func (p *Parser) parseLabelDef() error {
	nameTok := p.lx.Next()
	p.lx.Next() // ":"

	fn := p.table.CurrentFunction()
	if fn == nil {
		return kerr.MakeError(kerr.ErrUnexpectedToken, "label %q outside function", nameTok.Text)
	}

	lbl, exists := fn.LabelsByName[nameTok.Text]
	if exists && lbl.InstructionIndex >= 0 {
		return kerr.MakeError(kerr.ErrDuplicateLabel, "label %q redefined", nameTok.Text)
	}
	if !exists {
		lbl = p.labelRef(nameTok.Text)
	}

	here := p.emit.W.Len()
	lbl.InstructionIndex = int(here)
	lbl.Address = &here

	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpLabel})
}

// labelRef resolves a label name to its symbol, forward-declaring an
// unaddressed label (InstructionIndex -1) the first time it is
// referenced, whether by a goto preceding the label's definition or by
// the definition itself.
func (p *Parser) labelRef(name string) *symbols.Label {
	fn := p.table.CurrentFunction()
	if fn == nil {
		return nil
	}
	if lbl, ok := fn.LabelsByName[name]; ok {
		return lbl
	}
	id := p.table.AllocateFunctionOrLabel()
	lbl := &symbols.Label{Identifier: &id, Alias: name, InstructionIndex: -1}
	fn.LabelsByName[name] = lbl
	fn.LabelsByID[id] = lbl
	fn.LabelOrder = append(fn.LabelOrder, lbl)
	return lbl
}

func (p *Parser) parseGoto() error {
	p.lx.Next()
	disabled := false
	if p.atDelim("*") {
		p.lx.Next()
		disabled = true
	}
	nameTok := p.lx.Next()
	if err := p.expectDelim(";"); err != nil {
		return err
	}
	lbl := p.labelRef(nameTok.Text)
	if lbl == nil {
		return kerr.MakeError(kerr.ErrUnexpectedToken, "goto %q outside function", nameTok.Text)
	}
	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpGoto, Disabled: disabled, Operands: []instructions.Operand{{Kind: instructions.OperandVariable, Variable: *lbl.Identifier}}})
}

func (p *Parser) parseIf() error {
	p.lx.Next()
	disabled := p.consumeStar()
	cond, err := p.parseExpression()
	if err != nil {
		return err
	}
	if err := p.expectDelim("{"); err != nil {
		return err
	}
	if err := p.emit.EmitIf(cond, disabled); err != nil {
		return err
	}
	for !p.atDelim("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}

	for p.atIdent("else") {
		p.lx.Next()
		if p.atIdent("if") {
			p.lx.Next()
			disabled := p.consumeStar()
			cond, err := p.parseExpression()
			if err != nil {
				return err
			}
			if err := p.expectDelim("{"); err != nil {
				return err
			}
			if err := p.emit.EmitElseIf(cond, disabled); err != nil {
				return err
			}
			for !p.atDelim("}") {
				if err := p.parseStatement(); err != nil {
					return err
				}
			}
			if err := p.expectDelim("}"); err != nil {
				return err
			}
			continue
		}
		if err := p.expectDelim("{"); err != nil {
			return err
		}
		if err := p.emit.EmitElse(); err != nil {
			return err
		}
		for !p.atDelim("}") {
			if err := p.parseStatement(); err != nil {
				return err
			}
		}
		if err := p.expectDelim("}"); err != nil {
			return err
		}
		break
	}

	return p.emit.EmitEndIf()
}

func (p *Parser) parseWhile() error {
	p.lx.Next()
	disabled := p.consumeStar()
	loopStart := p.emit.W.Len()
	cond, err := p.parseExpression()
	if err != nil {
		return err
	}
	if err := p.expectDelim("{"); err != nil {
		return err
	}
	if err := p.emit.EmitWhile(cond, disabled); err != nil {
		return err
	}
	for !p.atDelim("}") {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}
	return p.emit.EmitEndWhile(loopStart)
}

// parseSwitch parses "switch EXPR { case ... }", where individual case
// bodies are not brace-delimited: a case's statement list runs until
// the next case/default clause or the switch's own closing brace.
func (p *Parser) parseSwitch() error {
	p.lx.Next() // switch
	cond, err := p.parseExpression()
	if err != nil {
		return err
	}
	if err := p.expectDelim("{"); err != nil {
		return err
	}
	if err := p.emit.EmitSwitch(cond); err != nil {
		return err
	}
	for !p.atDelim("}") {
		if err := p.parseCase(); err != nil {
			return err
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}
	return p.emit.EmitEndSwitch()
}

func (p *Parser) parseCase() error {
	p.lx.SkipNewlines()
	t := p.lx.Peek(0)

	switch t.Text {
	case "case":
		p.lx.Next()
		loTok := p.lx.Next()
		lo := parseIntLiteral(loTok)
		if p.lx.Peek(0).Kind == TokNumber {
			hiTok := p.lx.Next()
			hi := parseIntLiteral(hiTok)
			if err := p.expectDelim(":"); err != nil {
				return err
			}
			if err := p.emit.EmitCaseRange(lo, hi); err != nil {
				return err
			}
		} else {
			if err := p.expectDelim(":"); err != nil {
				return err
			}
			if err := p.emit.EmitCase(lo); err != nil {
				return err
			}
		}
	case "default":
		p.lx.Next()
		if err := p.expectDelim(":"); err != nil {
			return err
		}
		if err := p.emit.EmitCaseDefault(); err != nil {
			return err
		}
	default:
		return kerr.MakeError(kerr.ErrUnexpectedToken, "expected case or default, got %q", t.Text)
	}

	// Disassembly renders each case header with a decorative trailing
	// "{", mirroring the "} else if {" combined close/open idiom, even
	// though case bodies aren't brace-delimited: tolerate it here.
	if p.atDelim("{") {
		p.lx.Next()
	}

	for !p.atCaseBoundary() {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	return nil
}

// atCaseBoundary reports whether the next token starts a new case
// clause or closes the switch, ending the current case's statement
// list.
func (p *Parser) atCaseBoundary() bool {
	p.lx.SkipNewlines()
	t := p.lx.Peek(0)
	if t.Kind == TokDelimiter && t.Text == "}" {
		return true
	}
	return t.Kind == TokIdent && (t.Text == "case" || t.Text == "default")
}

func parseIntLiteral(t Token) uint32 {
	if t.IsHex {
		n, _ := strconv.ParseUint(t.Text[2:], 16, 32)
		return uint32(n)
	}
	n, _ := strconv.ParseInt(t.Text, 10, 32)
	return uint32(int32(n))
}

func (p *Parser) parseArrayDecl(kind string) error {
	p.lx.Next()
	nameTok := p.lx.Next()
	if err := p.expectOperator("="); err != nil {
		return err
	}
	if err := p.expectDelim("{"); err != nil {
		return err
	}

	var dataType symbols.ArrayDataType
	switch kind {
	case "int_array":
		dataType = symbols.ArrayInt
	case "float_array":
		dataType = symbols.ArrayFloat
	case "bool_array":
		dataType = symbols.ArrayBool
	default:
		dataType = symbols.ArrayVariable
	}

	var values []any
	for !p.atDelim("}") {
		tok := p.lx.Next()
		switch tok.Text {
		case "true":
			values = append(values, true)
		case "false":
			values = append(values, false)
		default:
			if containsDot(tok.Text) {
				f, _ := strconv.ParseFloat(tok.Text, 32)
				values = append(values, float32(f))
			} else {
				n, _ := strconv.ParseInt(tok.Text, 10, 32)
				values = append(values, int32(n))
			}
		}
		if p.atDelim(",") {
			p.lx.Next()
		}
	}
	if err := p.expectDelim("}"); err != nil {
		return err
	}
	if err := p.expectDelim(";"); err != nil {
		return err
	}

	id := p.table.AllocateStatic()
	arr := &symbols.Array{Name: nameTok.Text, Length: uint32(len(values)), Identifier: id, Values: values, DataType: dataType}
	if fn := p.table.CurrentFunction(); fn != nil {
		fn.LocalArraysByID[id] = arr
		fn.LocalArraysByName[arr.Name] = arr
	} else {
		p.table.ArraysByID[id] = arr
		p.table.ArraysByName[arr.Name] = arr
	}

	var op instructions.OpCode
	switch kind {
	case "int_array":
		op = instructions.OpIntArrayOpen
	case "float_array":
		op = instructions.OpFloatArrayOpen
	case "bool_array":
		op = instructions.OpBoolArrayOpen
	default:
		op = instructions.OpVariableArrayOpen
	}
	if err := p.emit.EmitInstruction(&instructions.Instruction{OpCode: op, Operands: []instructions.Operand{{Kind: instructions.OperandVariable, Variable: id}}}); err != nil {
		return err
	}
	return p.emit.EmitInstruction(&instructions.Instruction{OpCode: instructions.OpArrayClose})
}

func (p *Parser) consumeStar() bool {
	if p.atDelim("*") {
		p.lx.Next()
		return true
	}
	return false
}

func (p *Parser) atDelim(s string) bool {
	p.lx.SkipNewlines()
	t := p.lx.Peek(0)
	// The lexer always emits '*' as an operator token.
	return (t.Kind == TokDelimiter || (s == "*" && t.Kind == TokOperator)) && t.Text == s
}

func (p *Parser) atIdent(s string) bool {
	p.lx.SkipNewlines()
	t := p.lx.Peek(0)
	return t.Kind == TokIdent && t.Text == s
}

// expectDelim consumes the next token, raising a structural error if
// it is not the delimiter s. Brace/paren mismatches are reported as
// ErrUnmatchedBrace; every other delimiter mismatch as
// ErrUnexpectedToken.
func (p *Parser) expectDelim(s string) error {
	p.lx.SkipNewlines()
	t := p.lx.Next()
	if t.Kind == TokDelimiter && t.Text == s {
		return nil
	}
	if s == "{" || s == "}" || s == "(" || s == ")" {
		return kerr.MakeError(kerr.ErrUnmatchedBrace, "expected %q, got %q", s, t.Text)
	}
	return kerr.MakeError(kerr.ErrUnexpectedToken, "expected %q, got %q", s, t.Text)
}

// expectOperator consumes the next token, raising ErrUnexpectedToken
// if it is not the operator glyph s.
func (p *Parser) expectOperator(s string) error {
	p.lx.SkipNewlines()
	t := p.lx.Next()
	if t.Kind == TokOperator && t.Text == s {
		return nil
	}
	return kerr.MakeError(kerr.ErrUnexpectedToken, "expected %q, got %q", s, t.Text)
}

// expectIdent consumes the next token, raising ErrUnexpectedToken if
// it is not the identifier s.
func (p *Parser) expectIdent(s string) error {
	p.lx.SkipNewlines()
	t := p.lx.Next()
	if t.Kind == TokIdent && t.Text == s {
		return nil
	}
	return kerr.MakeError(kerr.ErrUnexpectedToken, "expected %q, got %q", s, t.Text)
}
