package disasm

import (
	"testing"

	"github.com/Manu343726/ksmtool/pkg/diag"
	"github.com/Manu343726/ksmtool/pkg/ksm/asm"
	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `
public main() {
	return;
}
`

func buildSample(t *testing.T, version instructions.Version) *container.File {
	t.Helper()
	f, err := asm.Assemble(sampleBody, "", version)
	require.NoError(t, err)
	raw := container.Build(f)
	got, err := container.Read(raw)
	require.NoError(t, err)
	return got
}

func TestDisassembleRendersFunctionAndReturn(t *testing.T) {
	for _, version := range []instructions.Version{instructions.V130, instructions.V132} {
		f := buildSample(t, version)

		result, err := Disassemble(f, diag.Discard())
		require.NoError(t, err)

		assert.Contains(t, result.Body, "main(")
		assert.Contains(t, result.Body, "return;")
		assert.Contains(t, result.Body, "}")
	}
}

func TestDisassembleRendersPlaceholderForUnrecognizedWord(t *testing.T) {
	f := buildSample(t, instructions.V132)
	sec := f.Sections[container.SectionInstructions]
	// Splice in a bogus word the dispatch rule cannot classify, ahead
	// of the real stream's EndFile sentinel.
	sec.Words = append([]uint32{0x00bfbfbf}, sec.Words...)
	sec.ItemCount++

	result, err := Disassemble(f, diag.Discard())
	require.NoError(t, err)
	assert.Contains(t, result.Body, "?0xbfbfbf;")
}
