package container

import "github.com/Manu343726/ksmtool/pkg/ksm/words"

// BuildSummaryWords produces the summary section's word body for the
// given version: empty under v1.3.0, or a length-prefixed filename
// string under v1.3.2 (with the section's item count set to the
// 0xffffffff sentinel by the caller).
func BuildSummaryWords(version Version, sourceFileName string) []uint32 {
	if version != V132 {
		return nil
	}
	w := words.NewWriter()
	w.WriteString(sourceFileName)
	return w.Words()
}

// Build serializes a fully populated File (every section's Words slice
// already built by the assembler, in on-disk order) into the final raw
// little-endian word array, computing the header's section offsets and
// total word count.
func Build(f *File) []uint32 {
	kinds := []SectionKind{
		SectionSummary, SectionFunctions, SectionStaticVars, SectionArrays,
		SectionConstVars, SectionImports, SectionGlobalVars, SectionInstructions,
	}

	bodies := make([][]uint32, len(kinds))
	for i, kind := range kinds {
		s := f.Sections[kind]
		body := make([]uint32, 0, len(s.Words)+1)
		body = append(body, s.ItemCount)
		body = append(body, s.Words...)
		bodies[i] = body
	}

	headerWords := uint32(11)
	offsets := make([]uint32, len(kinds))
	cursor := headerWords
	for i, body := range bodies {
		offsets[i] = cursor
		cursor += uint32(len(body))
	}
	total := cursor

	raw := make([]uint32, 0, total)
	raw = append(raw, Magic, uint32(f.Version))
	raw = append(raw, offsets...)
	raw = append(raw, total)
	for _, body := range bodies {
		raw = append(raw, body...)
	}
	return raw
}
