package instructions

import (
	"testing"

	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchFunctionIdentifierWinsFirst(t *testing.T) {
	id := symbols.NewStatic(0, 0x100000)
	functions := map[symbols.Identifier]*symbols.Function{id: {Identifier: id}}

	decoded := Dispatch(uint32(id), V132, functions)

	assert.Equal(t, KindCalledFunction, decoded.Kind)
	assert.Equal(t, id, decoded.Function)
}

func TestDispatchVariableReferenceOnNonzeroHighBits(t *testing.T) {
	id := symbols.NewLocalVar(4)
	functions := map[symbols.Identifier]*symbols.Function{}

	decoded := Dispatch(uint32(id), V132, functions)

	assert.Equal(t, KindVariableReference, decoded.Kind)
	assert.Equal(t, id, decoded.Variable)
}

func TestDispatchOperator(t *testing.T) {
	word := operatorBinaryValue(Add, V132)

	decoded := Dispatch(word, V132, nil)

	assert.Equal(t, KindOperator, decoded.Kind)
	assert.Equal(t, Add, decoded.Operator)
}

func TestDispatchImportReference(t *testing.T) {
	word := uint32(symbols.FirstImportIdentifier)

	decoded := Dispatch(word, V132, nil)

	assert.Equal(t, KindImportReference, decoded.Kind)
}

func TestDispatchOpCode(t *testing.T) {
	word, err := EncodeOpCodeWord(OpNoop, V132, false)
	require.NoError(t, err)

	decoded := Dispatch(word, V132, nil)

	assert.Equal(t, KindOpCode, decoded.Kind)
	assert.Equal(t, OpNoop, decoded.OpCode)
}

func TestDispatchUnknownOnMiss(t *testing.T) {
	used := map[uint32]bool{}
	for _, d := range Descriptors {
		used[d.V130] = true
		if d.InV132 {
			used[d.V132] = true
		}
	}

	var gap uint32
	found := false
	for v := uint32(0); v < uint32(symbols.FirstImportIdentifier); v++ {
		if used[v] {
			continue
		}
		if _, ok := operatorFromBinary(v, V132); ok {
			continue
		}
		if symbols.Identifier(v).IsImport() {
			continue
		}
		gap = v
		found = true
		break
	}
	require.True(t, found, "expected at least one unassigned opcode byte below the import range")

	decoded := Dispatch(gap, V132, nil)
	assert.Equal(t, KindUnknown, decoded.Kind)
}

func TestEncodeOpCodeWordRejectsObsoleteUnderV132(t *testing.T) {
	_, err := EncodeOpCodeWord(OpIfEqual, V132, false)
	assert.Error(t, err)
}

func TestDisableExpressionBit(t *testing.T) {
	word, err := EncodeOpCodeWord(OpIf, V132, true)
	require.NoError(t, err)

	assert.True(t, DisableExpressionBit(word))

	word, err = EncodeOpCodeWord(OpIf, V132, false)
	require.NoError(t, err)
	assert.False(t, DisableExpressionBit(word))
}
