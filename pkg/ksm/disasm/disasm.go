// Package disasm drives the word stream, symbol tables, and
// instruction model over a parsed container to produce CKSM (body) and
// HKSM (header) text.
package disasm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// Result is the textual output of a disassembly pass.
type Result struct {
	Body   string // CKSM
	Header string // HKSM
}

// Disassemble walks every section of f, populating a fresh symbol
// table from the binary before decoding the instruction stream, and
// renders CKSM body text and HKSM header text. Unknown-opcode
// placeholders are logged to log as warnings rather than aborting the
// pass.
func Disassemble(f *container.File, log *slog.Logger) (*Result, error) {
	table := symbols.NewTable()
	table.V132 = f.Version == container.V132

	if err := loadImports(f, table); err != nil {
		return nil, err
	}
	if err := loadStaticVars(f, table); err != nil {
		return nil, err
	}
	if err := loadConstVars(f, table); err != nil {
		return nil, err
	}
	if err := loadArrays(f, table); err != nil {
		return nil, err
	}
	if err := loadFunctions(f, table); err != nil {
		return nil, err
	}

	body, warnings, err := disassembleInstructions(f, table)
	if err != nil {
		return nil, err
	}
	if warnings > 0 {
		log.Warn("unrecognized words in instruction stream", "count", warnings)
	}

	header := buildHeader(f, table)

	return &Result{Body: body, Header: header}, nil
}

// emitter accumulates indented CKSM body text.
type emitter struct {
	indent int
	lines  []string
}

func (e *emitter) line(format string, args ...any) {
	e.lines = append(e.lines, strings.Repeat("\t", e.indent)+fmt.Sprintf(format, args...))
}

func (e *emitter) String() string {
	return strings.Join(e.lines, "\n") + "\n"
}

// disassembleInstructions decodes the instruction section word-by-word
// via the opcode dispatch rule, tracking indentLevel as block openers
// and closers are encountered, and rendering each instruction's
// textual form.
func disassembleInstructions(f *container.File, table *symbols.Table) (string, int, error) {
	sec := f.Sections[container.SectionInstructions]
	r := words.NewReader(sec.Words)

	e := &emitter{}
	unknownCount := 0

	for !r.Done() {
		w, err := r.Next()
		if err != nil {
			return "", unknownCount, err
		}
		if w.Value == 0 && r.Len() == 0 {
			break
		}

		d := instructions.Dispatch(w.Value, versionOf(f), table.Functions)
		if d.Kind != instructions.KindOpCode {
			// A bare variable/import/operator word outside of any
			// expression context only occurs at the file tail sentinel
			// (EndFile) in well-formed input; anything else is treated
			// as an unknown opcode placeholder per the warning policy.
			e.line("?%#x;", w.Value)
			unknownCount++
			continue
		}

		if d.OpCode == instructions.OpEndFile {
			break
		}

		instr, err := instructions.DecodeInstruction(w.Value, r, versionOf(f), table.Functions)
		if err != nil {
			return "", unknownCount, kerr.MakeError(err, "decoding instruction at word %d", w.Index)
		}
		instr.Address = w.Index

		switch instr.OpCode {
		case instructions.OpOpenFunction, instructions.OpOpenThread, instructions.OpOpenThreadChild:
			if len(instr.Operands) > 0 {
				table.PushFunction(table.Functions[instr.Operands[0].Function])
			} else {
				table.PushFunction(nil)
			}
		}

		delta := renderInstruction(e, instr, table)
		e.indent += delta

		if instr.OpCode == instructions.OpCloseFunction {
			table.PopFunction()
		}
	}

	return e.String(), unknownCount, nil
}

func versionOf(f *container.File) instructions.Version {
	return f.Version
}

// closingOpcodes dedent before they print their own line.
var closingOpcodes = map[instructions.OpCode]bool{
	instructions.OpCloseFunction: true,
	instructions.OpElse:          true,
	instructions.OpElseIf:        true,
	instructions.OpEndIf:         true,
	instructions.OpEndSwitch:     true,
	instructions.OpEndWhile:      true,
	instructions.OpCaseDefault:   true,
	instructions.OpCaseRange:     true,
	instructions.OpCase:          true,
}

// openingOpcodes indent after they print their own line.
var openingOpcodes = map[instructions.OpCode]bool{
	instructions.OpOpenFunction:    true,
	instructions.OpOpenThread:      true,
	instructions.OpOpenThreadChild: true,
	instructions.OpIf:              true,
	instructions.OpElseIf:          true,
	instructions.OpElse:            true,
	instructions.OpSwitch:          true,
	instructions.OpCase:            true,
	instructions.OpCaseDefault:     true,
	instructions.OpCaseRange:       true,
	instructions.OpWhile:           true,
}

// renderInstruction renders one instruction's textual form and returns
// the indent delta to apply to subsequent lines.
func renderInstruction(e *emitter, instr *instructions.Instruction, table *symbols.Table) int {
	dedent := closingOpcodes[instr.OpCode]
	indentNow := dedent
	if indentNow {
		e.indent--
	}

	e.line("%s", renderText(instr, table))

	if openingOpcodes[instr.OpCode] {
		return 1
	}
	if dedent && !openingOpcodes[instr.OpCode] {
		return 0
	}
	return 0
}

// renderText renders the opcode-specific textual syntax for one
// instruction. Opcodes without a bespoke rendering fall back to a
// generic "mnemonic(operands...)" form, which keeps every one of the
// catalogue's opcodes representable even where §6's textual grammar
// does not spell out a dedicated surface form.
func renderText(instr *instructions.Instruction, table *symbols.Table) string {
	star := ""
	if instr.Disabled {
		star = "*"
	}

	switch instr.OpCode {
	case instructions.OpLabel:
		if fn := table.CurrentFunction(); fn != nil {
			if lbl, ok := fn.LabelsByAddr[instr.Address]; ok {
				return lbl.Alias + ":"
			}
		}
		return "label:"
	case instructions.OpGoto:
		return fmt.Sprintf("goto%s %s;", star, operandText(instr.Operands[0], table))
	case instructions.OpCaseGoto:
		return fmt.Sprintf("goto%s %s; // case", star, operandText(instr.Operands[0], table))
	case instructions.OpCloseFunction:
		return "}"
	case instructions.OpReturn:
		return "return;"
	case instructions.OpNoop:
		return "noop;"
	case instructions.OpEndFile:
		return "// end of file"
	case instructions.OpBreakSwitch:
		return "break;"
	case instructions.OpBreakWhile:
		return "break;"
	case instructions.OpContinueWhile:
		return "continue;"
	case instructions.OpEndIf, instructions.OpEndSwitch, instructions.OpEndWhile:
		return "}"
	case instructions.OpElse:
		return "} else {"
	case instructions.OpGlobalCodeOpen:
		return "global {"
	case instructions.OpGlobalCodeClose:
		return "}"
	case instructions.OpIf:
		return fmt.Sprintf("if%s %s {", star, exprText(instr.Expressions[0], table))
	case instructions.OpElseIf:
		return fmt.Sprintf("} else if%s %s {", star, exprText(instr.Expressions[0], table))
	case instructions.OpWhile:
		return fmt.Sprintf("while%s %s {", star, exprText(instr.Expressions[0], table))
	case instructions.OpSwitch:
		return fmt.Sprintf("switch %s {", exprText(instr.Expressions[0], table))
	case instructions.OpCase:
		return fmt.Sprintf("case %d: {", int32(instr.Operands[0].Raw))
	case instructions.OpCaseRange:
		return fmt.Sprintf("case %d ... %d: {", int32(instr.Operands[0].Raw), int32(instr.Operands[1].Raw))
	case instructions.OpCaseDefault:
		return "default: {"
	case instructions.OpAssignment:
		return fmt.Sprintf("%s = %s;", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpFunctionAssignment:
		return fmt.Sprintf("%s = %s;", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpAssignmentReferenceArray:
		return fmt.Sprintf("%s = %s;", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpDeleteVariable:
		return fmt.Sprintf("delete %s;", operandText(instr.Operands[0], table))
	case instructions.OpVariableArrayOpen:
		return fmt.Sprintf("var_array %s = {", operandText(instr.Operands[0], table))
	case instructions.OpIntArrayOpen:
		return fmt.Sprintf("int_array %s = {", operandText(instr.Operands[0], table))
	case instructions.OpFloatArrayOpen:
		return fmt.Sprintf("float_array %s = {", operandText(instr.Operands[0], table))
	case instructions.OpBoolArrayOpen:
		return fmt.Sprintf("bool_array %s = {", operandText(instr.Operands[0], table))
	case instructions.OpArrayClose:
		return "};"
	case instructions.OpCall, instructions.OpThreadCall, instructions.OpThreadCallChild:
		return fmt.Sprintf("%s(%s);", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpVariableCall, instructions.OpVariableThreadCall, instructions.OpVariableThreadCallChild:
		return fmt.Sprintf("(%s)(%s);", exprText(instr.Expressions[0], table), exprText(instr.Expressions[1], table))
	case instructions.OpOpenFunction:
		return fmt.Sprintf("public %s(%s) {", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpOpenThread:
		return fmt.Sprintf("thread %s(%s) {", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpOpenThreadChild:
		return fmt.Sprintf("child thread %s(%s) {", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpCastToInteger:
		return fmt.Sprintf("int(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpCastToFloatingPoint:
		return fmt.Sprintf("float(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpGetArrayLength:
		return fmt.Sprintf("length(%s);", operandText(instr.Operands[0], table))
	case instructions.OpGetArgumentCount:
		return "arg_count();"
	case instructions.OpAssert:
		return fmt.Sprintf("assert(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpFormatString:
		return fmt.Sprintf("format(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpSleepFrames:
		return fmt.Sprintf("sleep_frames(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpSleepMilliseconds:
		return fmt.Sprintf("sleep_milliseconds(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpSleepUntilComplete:
		return fmt.Sprintf("sleep_until_complete(%s);", operandText(instr.Operands[0], table))
	case instructions.OpSleepWhile:
		return fmt.Sprintf("sleep_while(%s);", exprText(instr.Expressions[0], table))
	case instructions.OpIsChildThreadIncomplete:
		return fmt.Sprintf("is_incomplete(%s);", operandText(instr.Operands[0], table))
	case instructions.OpGetDataType:
		return fmt.Sprintf("type(%s);", exprText(instr.Expressions[0], table))
	default:
		return genericText(instr, table)
	}
}

// genericText is the fallback rendering for opcodes with no dedicated
// surface syntax above: mnemonic(operands...).
func genericText(instr *instructions.Instruction, table *symbols.Table) string {
	var parts []string
	for _, o := range instr.Operands {
		parts = append(parts, operandText(o, table))
	}
	for _, e := range instr.Expressions {
		parts = append(parts, exprText(e, table))
	}
	return fmt.Sprintf("%s(%s);", instr.OpCode, strings.Join(parts, ", "))
}

func operandText(o instructions.Operand, table *symbols.Table) string {
	switch o.Kind {
	case instructions.OperandVariable:
		if fn := table.CurrentFunction(); fn != nil {
			if lbl, ok := fn.LabelsByID[o.Variable]; ok {
				return lbl.Alias
			}
		}
		if v, err := table.LookupVariable(o.Variable); err == nil {
			return v.Alias
		}
		return fmt.Sprintf("var_%#x", uint32(o.Variable))
	case instructions.OperandFunction:
		if fn, ok := table.Functions[o.Function]; ok {
			return fn.Name
		}
		return fmt.Sprintf("func_%#x", uint32(o.Function))
	case instructions.OperandImport:
		if imp, ok := table.Imports[o.Import]; ok {
			return imp.Name
		}
		return fmt.Sprintf("import_%#x", uint32(o.Import))
	case instructions.OperandOperator:
		return o.Operator.String()
	case instructions.OperandOpCode:
		return genericText(o.Nested, table)
	default:
		return fmt.Sprintf("%#x", o.Raw)
	}
}

func exprText(e *instructions.Expression, table *symbols.Table) string {
	if e == nil {
		return ""
	}
	// A call-valued assignment's right-hand side decodes as
	// GetNextFunctionReturn immediately followed by the nested call
	// instruction; render it as the call itself rather than exposing
	// the accumulator read.
	if ops := e.Operands; len(ops) == 2 &&
		ops[0].Kind == instructions.OperandOpCode && ops[0].Nested != nil && ops[0].Nested.OpCode == instructions.OpGetNextFunctionReturn &&
		ops[1].Kind == instructions.OperandOpCode && ops[1].Nested != nil {
		return callText(ops[1].Nested, table)
	}
	parts := make([]string, 0, len(e.Operands))
	for _, o := range e.Operands {
		parts = append(parts, operandText(o, table))
	}
	return strings.Join(parts, " ")
}

// callText renders a call-family instruction as a bare call expression
// (no trailing semicolon), for use where a call appears as a value
// rather than a statement.
func callText(instr *instructions.Instruction, table *symbols.Table) string {
	switch instr.OpCode {
	case instructions.OpCall, instructions.OpThreadCall, instructions.OpThreadCallChild:
		return fmt.Sprintf("%s(%s)", operandText(instr.Operands[0], table), exprText(instr.Expressions[0], table))
	case instructions.OpVariableCall, instructions.OpVariableThreadCall, instructions.OpVariableThreadCallChild:
		return fmt.Sprintf("(%s)(%s)", exprText(instr.Expressions[0], table), exprText(instr.Expressions[1], table))
	default:
		return genericText(instr, table)
	}
}
