package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTempVarIdentifierClassification(t *testing.T) {
	id := NewTempVar(5)

	assert.True(t, id.IsTempVar())
	assert.False(t, id.IsTempStaticVar())
	assert.False(t, id.IsLocalVar())
	assert.Equal(t, uint32(5), id.TempSlot())
}

func TestTempVarV132UsesDistinctTag(t *testing.T) {
	id := NewTempVarV132(5)

	assert.True(t, id.IsTempVarV132())
	assert.False(t, id.IsTempVar())
}

func TestLocalVarSlotRoundTrip(t *testing.T) {
	id := NewLocalVar(12)

	assert.True(t, id.IsLocalVar())
	assert.Equal(t, uint32(12), id.LocalSlot())
}

func TestStaticAndConstAreDistinctScopeClasses(t *testing.T) {
	s := NewStatic(1, 0x100000)
	c := NewConst(1, 0x100000)

	assert.True(t, s.IsStatic())
	assert.False(t, s.IsConst())
	assert.True(t, c.IsConst())
	assert.False(t, c.IsStatic())
	assert.NotEqual(t, s, c)
}

func TestIdentifierClassesAreMutuallyExclusive(t *testing.T) {
	ids := []Identifier{
		NewTempVar(3),
		NewTempStaticVar(3),
		NewTempVarAsRef(3),
		NewLocalVar(3),
		NewStatic(3, 0x100000),
		NewConst(3, 0x100000),
	}

	classify := func(id Identifier) []string {
		var hits []string
		if id.IsTempVar() {
			hits = append(hits, "temp")
		}
		if id.IsTempStaticVar() {
			hits = append(hits, "tempstatic")
		}
		if id.IsTempVarAsRef() {
			hits = append(hits, "tempref")
		}
		if id.IsLocalVar() {
			hits = append(hits, "local")
		}
		if id.IsStatic() {
			hits = append(hits, "static")
		}
		if id.IsConst() {
			hits = append(hits, "const")
		}
		return hits
	}

	for _, id := range ids {
		assert.Len(t, classify(id), 1, "identifier %#x should match exactly one class", uint32(id))
	}
}

func TestImportRangeDetection(t *testing.T) {
	assert.True(t, FirstImportIdentifier.IsImport())
	assert.False(t, Identifier(tagStatic).IsImport())
}

func TestIsOpCode(t *testing.T) {
	assert.True(t, IsOpCode(0x05))
	assert.True(t, IsOpCode(maxOpCodeByte))
	assert.False(t, IsOpCode(maxOpCodeByte+1))
	assert.False(t, IsOpCode(0x00010000))
}
