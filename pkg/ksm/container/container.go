// Package container implements the KSM binary file framing: magic,
// version word, the eight section offsets plus total word count, and
// the nine fixed-order sections each body sits in.
package container

import (
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
)

// Magic is the fixed four-byte file signature ("KSMR" little-endian)
// at word 0 of every KSM file.
const Magic uint32 = 0x524d534b

// Version aliases the instructions package's version type, since the
// container header is what carries the version word on disk.
type Version = instructions.Version

const (
	V130 = instructions.V130
	V132 = instructions.V132
)

// SectionKind names the nine fixed-order sections. Header is written
// last on disk but occupies section index 0's declared offset slot,
// per the original's build-in-reverse convention.
type SectionKind int

const (
	SectionHeader SectionKind = iota
	SectionSummary
	SectionFunctions
	SectionStaticVars
	SectionArrays
	SectionConstVars
	SectionImports
	SectionGlobalVars
	SectionInstructions

	sectionCount
)

// Section is one item-count-prefixed body of raw words.
type Section struct {
	ItemCount uint32
	Words     []uint32
}

// Summary is the summary section's decoded contents. SourceFileName is
// only present under v1.3.2, where the section's declared item count
// is the sentinel 0xffffffff rather than a real count (see
// original_source/main.py's parseSummary).
type Summary struct {
	SourceFileName string
	HasFileName    bool
}

// File is a fully parsed KSM container: header offsets plus all nine
// section bodies.
type File struct {
	Version        Version
	SectionOffsets [8]uint32 // word offsets of sections 1..8 (summary..instructions)
	TotalWords     uint32

	Summary      Summary
	Sections     map[SectionKind]*Section
}

// NewFile creates an empty container of the given version, ready to
// be populated by the assembler.
func NewFile(version Version) *File {
	f := &File{Version: version, Sections: make(map[SectionKind]*Section)}
	for k := SectionSummary; k < sectionCount; k++ {
		f.Sections[k] = &Section{}
	}
	return f
}
