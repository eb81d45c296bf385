package instructions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorsCoverEveryDeclaredOpCode(t *testing.T) {
	assert.Len(t, Descriptors, len(declOrder))
}

func TestOpCodeBinaryValueRoundTripsPerVersion(t *testing.T) {
	for _, d := range Descriptors {
		v130, ok := d.OpCode.BinaryValue(V130)
		require.True(t, ok, "%s must exist under v1.3.0", d.Mnemonic)
		resolved, ok := OpCodeFromBinary(v130, V130)
		require.True(t, ok)
		assert.Equal(t, d.OpCode, resolved)

		if d.InV132 {
			v132, ok := d.OpCode.BinaryValue(V132)
			require.True(t, ok)
			resolved, ok := OpCodeFromBinary(v132, V132)
			require.True(t, ok)
			assert.Equal(t, d.OpCode, resolved)
		}
	}
}

func TestOpCodesBelowRenumberThresholdAreIdenticalAcrossVersions(t *testing.T) {
	for _, d := range Descriptors {
		if d.V130 < renumberFromOpCode && d.InV132 {
			assert.Equal(t, d.V130, d.V132, "%s should be unchanged below the renumbering threshold", d.Mnemonic)
		}
	}
}

func TestObsoleteCompareIfFamilyIsV130Only(t *testing.T) {
	obsolete := []OpCode{
		OpIfEqual, OpIfNotEqual, OpIfGreaterThan,
		OpIfLessThan, OpIfGreaterThanOrEqual, OpIfLessThanOrEqual,
	}
	for _, op := range obsolete {
		d := Describe(op)
		assert.False(t, d.InV132, "%s must not exist in v1.3.2", d.Mnemonic)
	}
}

func TestCaseGotoAliasesGotoUnderV132(t *testing.T) {
	caseGoto := Describe(OpCaseGoto)
	goTo := Describe(OpGoto)

	require.True(t, caseGoto.InV132)
	assert.Equal(t, goTo.V132, caseGoto.V132)
	assert.NotEqual(t, goTo.V130, caseGoto.V130, "v1.3.0 still assigns CaseGoto its own binary value")
}

func TestOpCodeFromMnemonicRoundTrips(t *testing.T) {
	for _, d := range Descriptors {
		op, ok := OpCodeFromMnemonic(d.Mnemonic)
		require.True(t, ok)
		assert.Equal(t, d.OpCode, op)
	}
}

func TestOperatorRangeSkippedByOpCodeNumbering(t *testing.T) {
	for _, d := range Descriptors {
		assert.False(t, d.V130 >= operatorRangeStartV130 && d.V130 <= operatorRangeEndV130,
			"%s's v1.3.0 binary value must not fall inside the operator range", d.Mnemonic)
	}
}

func TestOperatorBinaryValueShiftsByThreeBetweenVersions(t *testing.T) {
	for o := Operator(0); o < totalOperators; o++ {
		v130 := operatorBinaryValue(o, V130)
		v132 := operatorBinaryValue(o, V132)
		assert.Equal(t, v130-3, v132)

		resolved130, ok := operatorFromBinary(v130, V130)
		require.True(t, ok)
		assert.Equal(t, o, resolved130)

		resolved132, ok := operatorFromBinary(v132, V132)
		require.True(t, ok)
		assert.Equal(t, o, resolved132)
	}
}

func TestOperatorGlyphRoundTrip(t *testing.T) {
	for o := Operator(0); o < totalOperators; o++ {
		glyph := o.String()
		resolved, ok := OperatorFromGlyph(glyph)
		require.True(t, ok)
		assert.Equal(t, o, resolved)
	}
}

func TestVersionStringAndValidity(t *testing.T) {
	assert.True(t, V130.Valid())
	assert.True(t, V132.Valid())
	assert.False(t, Version(0).Valid())
	assert.Equal(t, "1.3.0", V130.String())
	assert.Equal(t, "1.3.2", V132.String())
}

func TestDocStringListsEveryOpCode(t *testing.T) {
	doc := DocString()
	for _, d := range Descriptors {
		assert.Contains(t, doc, d.Mnemonic)
	}
}
