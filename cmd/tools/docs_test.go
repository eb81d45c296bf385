package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedModulesProduceNonEmptyDocs(t *testing.T) {
	for name, docFn := range supportedModules {
		assert.NotEmpty(t, docFn(), "module %s should render non-empty documentation", name)
	}
}
