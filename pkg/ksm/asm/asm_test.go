package asm

import (
	"testing"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/disasm"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleBody = `
public main() {
	return;
}
`

func TestAssembleThenBuildThenReadRoundTrips(t *testing.T) {
	for _, version := range []instructions.Version{instructions.V130, instructions.V132} {
		f, err := Assemble(simpleBody, "", version)
		require.NoError(t, err)
		assert.Equal(t, version, f.Version)

		raw := container.Build(f)
		got, err := container.Read(raw)
		require.NoError(t, err)
		assert.Equal(t, version, got.Version)
		assert.NotZero(t, got.Sections[container.SectionFunctions].ItemCount)
		assert.NotEmpty(t, got.Sections[container.SectionInstructions].Words)
	}
}

func TestAssembleAppendsTrailingEndFile(t *testing.T) {
	f, err := Assemble(simpleBody, "", instructions.V132)
	require.NoError(t, err)

	words := f.Sections[container.SectionInstructions].Words
	require.NotEmpty(t, words)

	last, ok := instructions.OpCodeFromBinary(words[len(words)-1]&0xff, instructions.V132)
	require.True(t, ok)
	assert.Equal(t, instructions.OpEndFile, last)
}

func TestAssembleRejectsUnexpectedTopLevelToken(t *testing.T) {
	_, err := Assemble("garbage", "", instructions.V132)
	assert.Error(t, err)
}

func TestAssembleAcceptsOffsetDirective(t *testing.T) {
	header := "#offset 0x200000;\n"
	f, err := Assemble(simpleBody, header, instructions.V132)
	require.NoError(t, err)
	assert.NotNil(t, f)
}

// decodedOps decodes every instruction in the assembled body, in
// stream order, for shape-level assertions that don't want to hand-walk
// raw words.
func decodedOps(t *testing.T, f *container.File) []*instructions.Instruction {
	t.Helper()
	sec := f.Sections[container.SectionInstructions]
	r := words.NewReader(sec.Words)
	var out []*instructions.Instruction
	for !r.Done() {
		w, err := r.Next()
		require.NoError(t, err)
		d := instructions.Dispatch(w.Value, f.Version, nil)
		if d.Kind != instructions.KindOpCode {
			continue
		}
		if d.OpCode == instructions.OpEndFile {
			break
		}
		instr, err := instructions.DecodeInstruction(w.Value, r, f.Version, nil)
		require.NoError(t, err)
		instr.Address = w.Index
		out = append(out, instr)
	}
	return out
}

func opCodes(instrs []*instructions.Instruction) []instructions.OpCode {
	out := make([]instructions.OpCode, len(instrs))
	for i, instr := range instrs {
		out[i] = instr.OpCode
	}
	return out
}

func TestAssembleSwitchWithRangeAndDefault(t *testing.T) {
	body := `
public main() {
	switch x {
	case 1 ... 5:
		return;
	case 9:
		break;
	default:
		break;
	}
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)

	ops := opCodes(decodedOps(t, f))
	assert.Contains(t, ops, instructions.OpSwitch)
	assert.Contains(t, ops, instructions.OpCaseRange)
	assert.Contains(t, ops, instructions.OpCase)
	assert.Contains(t, ops, instructions.OpCaseDefault)
	assert.Contains(t, ops, instructions.OpBreakSwitch)
	assert.Contains(t, ops, instructions.OpEndSwitch)
}

func TestAssembleSwitchBackPatchesCaseChain(t *testing.T) {
	body := `
public main() {
	switch x {
	case 1:
		noop;
	default:
		noop;
	}
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	instrs := decodedOps(t, f)

	var sw, firstCase, def, end *instructions.Instruction
	for _, instr := range instrs {
		switch instr.OpCode {
		case instructions.OpSwitch:
			sw = instr
		case instructions.OpCase:
			firstCase = instr
		case instructions.OpCaseDefault:
			def = instr
		case instructions.OpEndSwitch:
			end = instr
		}
	}
	require.NotNil(t, sw)
	require.NotNil(t, firstCase)
	require.NotNil(t, def)
	require.NotNil(t, end)

	require.Len(t, sw.Targets, 2)
	require.Len(t, firstCase.Targets, 1)

	// sw.Targets[1] is the switch's first-case entry point.
	assert.Equal(t, firstCase.Address, sw.Targets[1])
	// the first case's own chain pointer lands on default.
	assert.Equal(t, def.Address, firstCase.Targets[0])
	// the switch's end-of-switch target and default's chain pointer
	// both land on EndSwitch's own address.
	assert.Equal(t, end.Address, sw.Targets[0])
	assert.Equal(t, end.Address, def.Targets[0])
}

func TestAssembleIfElseIfElseBackPatch(t *testing.T) {
	body := `
public main() {
	if x == 1 {
		noop;
	} else if x == 2 {
		noop;
	} else {
		noop;
	}
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	instrs := decodedOps(t, f)

	var ifInstr, elseIfInstr, elseAddr, endAddr *instructions.Instruction
	for _, instr := range instrs {
		switch instr.OpCode {
		case instructions.OpIf:
			ifInstr = instr
		case instructions.OpElseIf:
			elseIfInstr = instr
		case instructions.OpElse:
			elseAddr = instr
		case instructions.OpEndIf:
			endAddr = instr
		}
	}
	require.NotNil(t, ifInstr)
	require.NotNil(t, elseIfInstr)
	require.NotNil(t, elseAddr)
	require.NotNil(t, endAddr)

	require.Len(t, ifInstr.Targets, 3)
	require.Len(t, elseIfInstr.Targets, 2)

	// If's false-branch target lands on ElseIf.
	assert.Equal(t, elseIfInstr.Address, ifInstr.Targets[0])
	// ElseIf's false-branch target lands on Else.
	assert.Equal(t, elseAddr.Address, elseIfInstr.Targets[0])
	// Every accumulated end-jump lands right after EndIf.
	assert.Equal(t, endAddr.Address+1, ifInstr.Targets[1])
	assert.Equal(t, endAddr.Address+1, ifInstr.Targets[2])
	assert.Equal(t, endAddr.Address+1, elseIfInstr.Targets[1])
}

func TestAssembleBoolArrayRoundTrips(t *testing.T) {
	body := `
public main() {
	bool_array flags = { true, false, true };
	return;
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	raw := container.Build(f)
	got, err := container.Read(raw)
	require.NoError(t, err)

	result, err := disasm.Disassemble(got, diag.Discard())
	require.NoError(t, err)
	assert.Contains(t, result.Body, "bool_array")
	assert.Contains(t, result.Body, "true")
	assert.Contains(t, result.Body, "false")
}

func TestAssembleCallValuedAssignmentMaterializesAccumulator(t *testing.T) {
	body := `
public callee() {
	return;
}
public main() {
	x = callee();
	return;
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	instrs := decodedOps(t, f)

	var assign *instructions.Instruction
	for _, instr := range instrs {
		if instr.OpCode == instructions.OpAssignment {
			assign = instr
		}
	}
	require.NotNil(t, assign)
	require.Len(t, assign.Expressions, 1)
	require.Len(t, assign.Expressions[0].Operands, 2)
	assert.Equal(t, instructions.OperandOpCode, assign.Expressions[0].Operands[0].Kind)
	assert.Equal(t, instructions.OpGetNextFunctionReturn, assign.Expressions[0].Operands[0].Nested.OpCode)
	assert.Equal(t, instructions.OpCall, assign.Expressions[0].Operands[1].Nested.OpCode)
}

func TestAssembleUndeclaredCallRegistersImport(t *testing.T) {
	body := `
public main() {
	external_function(1);
	return;
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	assert.NotZero(t, f.Sections[container.SectionImports].ItemCount)
}

func TestAssembleRejectsDuplicateLabel(t *testing.T) {
	body := `
public main() {
loop:
	noop;
loop:
	return;
}
`
	_, err := Assemble(body, "", instructions.V132)
	assert.Error(t, err)
}

func TestAssembleRejectsDanglingLabel(t *testing.T) {
	body := `
public main() {
	goto nowhere;
	return;
}
`
	_, err := Assemble(body, "", instructions.V132)
	assert.Error(t, err)
}

func TestAssembleRejectsMismatchedBrace(t *testing.T) {
	body := `
public main() {
	return;
`
	_, err := Assemble(body, "", instructions.V132)
	assert.Error(t, err)
}

func TestAssembleRejectsBreakOutsideLoopOrSwitch(t *testing.T) {
	body := `
public main() {
	break;
}
`
	_, err := Assemble(body, "", instructions.V132)
	assert.Error(t, err)
}

func TestAssembleGotoResolvesForwardLabel(t *testing.T) {
	body := `
public main() {
	goto done;
	noop;
done:
	return;
}
`
	f, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	instrs := decodedOps(t, f)

	var gotoInstr, labelInstr *instructions.Instruction
	for _, instr := range instrs {
		switch instr.OpCode {
		case instructions.OpGoto:
			gotoInstr = instr
		case instructions.OpLabel:
			labelInstr = instr
		}
	}
	require.NotNil(t, gotoInstr)
	require.NotNil(t, labelInstr)
	require.Len(t, gotoInstr.Operands, 1)
	assert.Equal(t, instructions.OperandVariable, gotoInstr.Operands[0].Kind)

	// The binary label table only records position, not the source
	// name, so after a round trip through the container the label
	// renders under its label<A-Z,0-9> alias rather than "done" -- but
	// goto and its target must still agree on that alias.
	raw := container.Build(f)
	got, err := container.Read(raw)
	require.NoError(t, err)
	result, err := disasm.Disassemble(got, diag.Discard())
	require.NoError(t, err)
	assert.Regexp(t, `goto label[0-9A-Z];`, result.Body)
	assert.Regexp(t, `label[0-9A-Z]:`, result.Body)
}

func TestAssembleDisassembleByteExactRoundTrip(t *testing.T) {
	body := `
public callee() {
	return;
}
public main() {
	int_array nums = { 1, 2, 3 };
	x = callee();
	if x == 1 {
		noop;
	} else {
		noop;
	}
	switch x {
	case 1 ... 3:
		break;
	default:
		break;
	}
loop:
	while x < 10 {
		goto loop;
	}
	return;
}
`
	f1, err := Assemble(body, "", instructions.V132)
	require.NoError(t, err)
	raw1 := container.Build(f1)
	got1, err := container.Read(raw1)
	require.NoError(t, err)

	result, err := disasm.Disassemble(got1, diag.Discard())
	require.NoError(t, err)

	f2, err := Assemble(result.Body, result.Header, instructions.V132)
	require.NoError(t, err)
	raw2 := container.Build(f2)

	assert.Equal(t, raw1, raw2)
}
