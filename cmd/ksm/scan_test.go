package ksm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportLinesExtractsImportDirectives(t *testing.T) {
	header := "#offset 0x100000;\n#import int foo;\nstatic int bar = 1;\n#import thread baz;\n"

	lines := importLines(header)

	assert.Equal(t, []string{"#import int foo;", "#import thread baz;"}, lines)
}

func TestImportLinesEmptyOnNoImports(t *testing.T) {
	assert.Empty(t, importLines("#offset 0x100000;\n"))
}
