package instructions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeOfKnownOpcodes(t *testing.T) {
	assert.Equal(t, ShapeOpenCallable, ShapeOf(OpOpenFunction))
	assert.Equal(t, ShapeIf, ShapeOf(OpIf))
	assert.Equal(t, ShapeWhile, ShapeOf(OpWhile))
	assert.Equal(t, ShapeAssign, ShapeOf(OpAssignment))
	assert.Equal(t, ShapeCallDirect, ShapeOf(OpCall))
	assert.Equal(t, ShapeCallIndirect, ShapeOf(OpVariableCall))
}

func TestShapeOfUnlistedOpcodeDefaultsToNone(t *testing.T) {
	assert.Equal(t, ShapeNone, ShapeOf(OpCloseFunction))
}

func TestCloseSentinelForCallFamily(t *testing.T) {
	assert.Equal(t, OpCloseFunctionArguments, closeSentinelFor[OpOpenFunction])
	assert.Equal(t, OpCloseCallArguments, closeSentinelFor[OpCall])
}
