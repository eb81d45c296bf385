package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyPopulatedFile(version Version) *File {
	f := NewFile(version)
	f.Sections[SectionFunctions].Words = []uint32{0xaa, 0xbb}
	f.Sections[SectionFunctions].ItemCount = 1
	return f
}

func TestBuildThenReadRoundTripsV130(t *testing.T) {
	f := emptyPopulatedFile(V130)

	raw := Build(f)
	got, err := Read(raw)
	require.NoError(t, err)

	assert.Equal(t, V130, got.Version)
	assert.Equal(t, f.Sections[SectionFunctions].Words, got.Sections[SectionFunctions].Words)
	assert.Equal(t, uint32(1), got.Sections[SectionFunctions].ItemCount)
	assert.False(t, got.Summary.HasFileName)
}

func TestBuildThenReadRoundTripsV132Filename(t *testing.T) {
	f := emptyPopulatedFile(V132)
	f.Sections[SectionSummary].ItemCount = 0xffffffff
	f.Sections[SectionSummary].Words = BuildSummaryWords(V132, "script.cksm")

	raw := Build(f)
	got, err := Read(raw)
	require.NoError(t, err)

	assert.True(t, got.Summary.HasFileName)
	assert.Equal(t, "script.cksm", got.Summary.SourceFileName)
}

func TestReadRejectsBadMagic(t *testing.T) {
	raw := Build(emptyPopulatedFile(V132))
	raw[0] = 0

	_, err := Read(raw)
	assert.Error(t, err)
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	raw := Build(emptyPopulatedFile(V132))
	raw[1] = 0xffff

	_, err := Read(raw)
	assert.Error(t, err)
}

func TestReadRejectsTruncatedFile(t *testing.T) {
	_, err := Read([]uint32{Magic, uint32(V132)})
	assert.Error(t, err)
}

func TestReadRejectsSectionOverrun(t *testing.T) {
	raw := Build(emptyPopulatedFile(V132))
	raw = raw[:len(raw)-1]

	_, err := Read(raw)
	assert.Error(t, err)
}

func TestBuildWritesMagicVersionAndTotalWordCount(t *testing.T) {
	f := emptyPopulatedFile(V130)
	raw := Build(f)

	assert.Equal(t, Magic, raw[0])
	assert.Equal(t, uint32(V130), raw[1])
	assert.Equal(t, uint32(len(raw)), raw[10], "total word count must match the built length")
}
