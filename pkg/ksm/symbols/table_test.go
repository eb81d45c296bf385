package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateStaticIsMonotonicAndUnique(t *testing.T) {
	table := NewTable()

	a := table.AllocateStatic()
	b := table.AllocateStatic()

	assert.NotEqual(t, a, b)
	assert.True(t, b.IsStatic())
}

func TestGetConstCoalescesSameValue(t *testing.T) {
	table := NewTable()

	first := table.GetConst(DataTypeInt, 42)
	second := table.GetConst(DataTypeInt, 42)
	third := table.GetConst(DataTypeInt, 43)

	assert.Same(t, first, second, "same (type, value) pair must coalesce to the same constant")
	assert.NotSame(t, first, third)
}

func TestGetOrCreateImportCountsUsesAndAssignsInFirstUseOrder(t *testing.T) {
	table := NewTable()

	a := table.GetOrCreateImport("foo", ImportInt)
	b := table.GetOrCreateImport("bar", ImportInt)
	aAgain := table.GetOrCreateImport("foo", ImportInt)

	assert.Same(t, a, aAgain)
	assert.Equal(t, uint32(2), aAgain.TimesUsed)
	assert.Equal(t, uint32(1), b.TimesUsed)
	assert.NotEqual(t, a.Identifier, b.Identifier)
	assert.Equal(t, FirstImportIdentifier, a.Identifier)
}

func TestLookupVariableFunctionScopeShadowsGlobal(t *testing.T) {
	table := NewTable()
	id := table.AllocateStatic()

	global := &Variable{Identifier: id, Alias: "global_one", Scope: ScopeStatic}
	table.Variables[id] = global

	fn := &Function{Identifier: table.AllocateStatic(), Name: "f"}
	fn.LocalsByID = map[Identifier]*Variable{
		id: {Identifier: id, Alias: "shadowed", Scope: ScopeLocal},
	}
	table.PushFunction(fn)
	defer table.PopFunction()

	v, err := table.LookupVariable(id)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", v.Alias)
}

func TestLookupVariableSynthesizesImplicitTempSlots(t *testing.T) {
	table := NewTable()
	id := NewTempVar(9)

	v, err := table.LookupVariable(id)
	require.NoError(t, err)
	assert.Equal(t, ScopeTemp, v.Scope)
}

func TestLookupVariableUnknownIdentifierErrors(t *testing.T) {
	table := NewTable()

	_, err := table.LookupVariable(Identifier(0xdeadbeef))
	assert.Error(t, err)
}

func TestMinMaxIdentifiersAcrossTables(t *testing.T) {
	table := NewTable()

	a := table.AllocateStatic()
	table.Variables[a] = &Variable{Identifier: a}

	b := table.AllocateStatic()
	table.Functions[b] = &Function{Identifier: b}

	min, max := table.MinMaxIdentifiers()
	assert.LessOrEqual(t, min, max)
	assert.Equal(t, a.Low24(), min)
	assert.Equal(t, b.Low24(), max)
}
