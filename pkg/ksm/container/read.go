package container

import (
	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/words"
)

// Read parses a full KSM file from its raw little-endian word array:
// magic and version validation, section offset splitting, and summary
// decoding (including the v1.3.2 filename sentinel).
func Read(raw []uint32) (*File, error) {
	if len(raw) < 11 {
		return nil, kerr.MakeError(kerr.ErrSectionOverrun, "file too short for header: %d words", len(raw))
	}
	if raw[0] != Magic {
		return nil, kerr.MakeError(kerr.ErrBadMagic, "got %#x, want %#x", raw[0], Magic)
	}
	version := Version(raw[1])
	if !version.Valid() {
		return nil, kerr.MakeError(kerr.ErrUnknownVersion, "got %#x", uint32(version))
	}

	f := &File{Version: version, Sections: make(map[SectionKind]*Section)}
	copy(f.SectionOffsets[:], raw[2:10])
	f.TotalWords = raw[10]

	bounds := append(append([]uint32{}, f.SectionOffsets[:]...), f.TotalWords)
	kinds := []SectionKind{
		SectionSummary, SectionFunctions, SectionStaticVars, SectionArrays,
		SectionConstVars, SectionImports, SectionGlobalVars, SectionInstructions,
	}
	for i, kind := range kinds {
		start := bounds[i]
		end := bounds[i+1]
		if int(end) > len(raw) || start > end {
			return nil, kerr.MakeError(kerr.ErrSectionOverrun, "section %d bounds [%d,%d) exceed file of %d words", kind, start, end, len(raw))
		}
		body := raw[start:end]
		if len(body) < 1 {
			return nil, kerr.MakeError(kerr.ErrSectionOverrun, "section %d has no item-count word", kind)
		}
		f.Sections[kind] = &Section{ItemCount: body[0], Words: body[1:]}
	}

	if err := parseSummary(f); err != nil {
		return nil, err
	}

	return f, nil
}

// parseSummary decodes the summary section. Under v1.3.2 the section's
// declared item count is the sentinel 0xffffffff (not a real count)
// and the body instead holds a length-prefixed filename string; under
// v1.3.0 the section carries no further structured content.
func parseSummary(f *File) error {
	s := f.Sections[SectionSummary]
	if f.Version != V132 {
		return nil
	}
	if s.ItemCount != 0xffffffff {
		return kerr.MakeError(kerr.ErrBadPadding, "v1.3.2 summary section count, got %#x", s.ItemCount)
	}
	r := words.NewReader(s.Words)
	name, err := r.ReadString()
	if err != nil {
		return kerr.MakeError(err, "reading v1.3.2 summary filename")
	}
	f.Summary = Summary{SourceFileName: name, HasFileName: true}
	return nil
}
