package instructions

// Shape tags the fixed operand pattern an opcode's decode/encode pair
// must follow, replacing one bespoke Go type per opcode with a single
// data-driven table, in the spirit of the teacher's descriptor-table
// pattern (pkg/hw/cpu/mc/instructions/descriptor.go) generalized from
// fixed-width register operands to this format's variable-length
// expression operands.
type Shape int

const (
	// ShapeNone: no operands beyond the opcode word itself.
	ShapeNone Shape = iota
	// ShapeID: one raw identifier word follows (goto target, delete
	// target, array-open array identifier, function-assignment funcref).
	ShapeID
	// ShapeExpr: one expression operand (or, when the disable-expression
	// bit is set, a single nested instruction instead of a full
	// expression).
	ShapeExpr
	// ShapeAssign: an assignee identifier followed by a value operand
	// (expression, unless disabled).
	ShapeAssign
	// ShapeIf: a condition operand followed by three jump-target words.
	ShapeIf
	// ShapeElseIf: a condition operand followed by two jump-target words.
	ShapeElseIf
	// ShapeWhile: a condition operand followed by two jump-target words
	// (loop-exit and loop-continue).
	ShapeWhile
	// ShapeCallDirect: a callee identifier followed by an argument
	// expression list terminated by the call's closing sentinel.
	ShapeCallDirect
	// ShapeCallIndirect: a callee operand (expression) followed by an
	// argument expression list terminated by the call's closing sentinel.
	ShapeCallIndirect
	// ShapeOpenCallable: a callable identifier followed by a parameter
	// expression list terminated by CloseFunctionArguments.
	ShapeOpenCallable
	// ShapeCaseValue: one raw word, the case's literal match value,
	// followed by one jump-target word (address of the next case/default
	// entry in the chain, back-patched by the assembler).
	ShapeCaseValue
	// ShapeCaseRange: two raw words, the case's inclusive [lower, upper]
	// match range, followed by one jump-target word.
	ShapeCaseRange
	// ShapeSwitch: a condition operand followed by two jump-target words,
	// in disk order: end-of-switch address first, then first-case entry
	// point.
	ShapeSwitch
	// ShapeCaseDefault: one raw unused word followed by one jump-target
	// word. The unused word carries no observed meaning on the wire but
	// is preserved byte-exact.
	ShapeCaseDefault
)

// closeSentinelFor names the terminator opcode a call/open-callable's
// trailing argument list ends on.
var closeSentinelFor = map[OpCode]OpCode{
	OpOpenFunction:            OpCloseFunctionArguments,
	OpOpenThread:              OpCloseFunctionArguments,
	OpOpenThreadChild:         OpCloseFunctionArguments,
	OpCall:                    OpCloseCallArguments,
	OpThreadCall:              OpCloseCallArguments,
	OpThreadCallChild:         OpCloseCallArguments,
	OpVariableCall:            OpCloseCallArguments,
	OpVariableThreadCall:      OpCloseCallArguments,
	OpVariableThreadCallChild: OpCloseCallArguments,
}

var shapes = map[OpCode]Shape{
	OpOpenFunction:    ShapeOpenCallable,
	OpOpenThread:      ShapeOpenCallable,
	OpOpenThreadChild: ShapeOpenCallable,
	OpCloseFunction:   ShapeNone,
	OpLabel:           ShapeNone,
	OpGoto:            ShapeID,
	OpCaseGoto:        ShapeID,
	OpIf:              ShapeIf,
	OpElseIf:          ShapeElseIf,
	OpElse:            ShapeNone,
	OpEndIf:           ShapeNone,
	OpSwitch:          ShapeSwitch,
	OpCase:            ShapeCaseValue,
	OpCaseDefault:     ShapeCaseDefault,
	OpCaseRange:       ShapeCaseRange,
	OpBreakSwitch:     ShapeNone,
	OpEndSwitch:       ShapeNone,
	OpWhile:           ShapeWhile,
	OpBreakWhile:      ShapeNone,
	OpContinueWhile:   ShapeNone,
	OpEndWhile:        ShapeNone,

	OpCall:                    ShapeCallDirect,
	OpThreadCall:              ShapeCallDirect,
	OpThreadCallChild:         ShapeCallDirect,
	OpVariableCall:            ShapeCallIndirect,
	OpVariableThreadCall:      ShapeCallIndirect,
	OpVariableThreadCallChild: ShapeCallIndirect,
	OpCloseFunctionArguments:  ShapeNone,
	OpCloseCallArguments:      ShapeNone,
	OpGetNextFunctionReturn:   ShapeNone,

	OpAssignment:               ShapeAssign,
	OpFunctionAssignment:       ShapeAssign,
	OpAssignmentReferenceArray: ShapeAssign,

	OpVariableArrayOpen: ShapeID,
	OpIntArrayOpen:      ShapeID,
	OpFloatArrayOpen:    ShapeID,
	OpBoolArrayOpen:     ShapeID,
	OpArrayClose:        ShapeNone,

	OpReadArrayEntry:                   ShapeAssign,
	OpArrayAssignment:                  ShapeAssign,
	OpArrayCopy1:                       ShapeAssign,
	OpArrayCopy2:                       ShapeAssign,
	OpArrayCopy3:                       ShapeAssign,
	OpArrayAssign1:                     ShapeAssign,
	OpArrayAssign2:                     ShapeAssign,
	OpArrayAssign3:                     ShapeAssign,
	OpArrayGetIndex:                    ShapeExpr,
	OpGetArrayLength:                   ShapeID,
	OpVariableReferenceReadArrayEntry:  ShapeAssign,
	OpVariableReferenceArrayAssignment: ShapeAssign,
	OpVariableReferenceArrayGetIndex:   ShapeExpr,
	OpVariableReferenceGetArrayLength:  ShapeExpr,

	OpDeleteVariable:          ShapeID,
	OpIsChildThreadIncomplete: ShapeID,
	OpSleepFrames:             ShapeExpr,
	OpSleepMilliseconds:       ShapeExpr,
	OpSleepUntilComplete:      ShapeID,
	OpSleepWhile:              ShapeExpr,
	OpFormatString:            ShapeExpr,
	OpCastToInteger:           ShapeExpr,
	OpCastToFloatingPoint:     ShapeExpr,
	OpGetDataType:             ShapeExpr,
	OpGetArgumentCount:        ShapeNone,
	OpAssert:                  ShapeExpr,
	OpNoop:                    ShapeNone,
	OpReturn:                  ShapeNone,
	OpEndFile:                 ShapeNone,
	OpGlobalCodeOpen:          ShapeNone,
	OpGlobalCodeClose:         ShapeNone,

	// Obsolete compare-if family: read-only, same jump-target shape as If.
	OpIfEqual:              ShapeIf,
	OpIfNotEqual:           ShapeIf,
	OpIfGreaterThan:        ShapeIf,
	OpIfLessThan:           ShapeIf,
	OpIfGreaterThanOrEqual: ShapeIf,
	OpIfLessThanOrEqual:    ShapeIf,
}

// ShapeOf returns an opcode's operand shape, defaulting to ShapeNone
// for any opcode left out of the table above.
func ShapeOf(op OpCode) Shape {
	if s, ok := shapes[op]; ok {
		return s
	}
	return ShapeNone
}
