package ksm

import (
	"testing"

	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/stretchr/testify/assert"
)

func TestSortedSectionKindsIsAscending(t *testing.T) {
	f := container.NewFile(container.V132)

	kinds := sortedSectionKinds(f)

	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1], kinds[i])
	}
	assert.Len(t, kinds, len(f.Sections))
}
