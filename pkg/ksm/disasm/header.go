package disasm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Manu343726/ksmtool/pkg/ksm/container"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
)

// buildHeader renders the HKSM header text: #offset, one #import line
// per declared import (the trailing {unknown0} pair only under
// v1.3.0), and one declaration line per static variable (primitives
// get an inline initializer; user-typed variables are printed once,
// deduplicated by name; func-typed are omitted).
func buildHeader(f *container.File, table *symbols.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#offset %#x;\n", table.SlotOffset)

	imports := make([]*symbols.Import, 0, len(table.Imports))
	for _, imp := range table.Imports {
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Identifier < imports[j].Identifier })

	for _, imp := range imports {
		typeName := importTypeName(imp.DataType)
		if f.Version == container.V132 {
			fmt.Fprintf(&b, "#import %s %s;\n", typeName, imp.Name)
		} else {
			fileID := uint32(0)
			if imp.FileID != nil {
				fileID = *imp.FileID
			}
			unknown0 := uint32(0)
			if imp.Unknown0 != nil {
				unknown0 = *imp.Unknown0
			}
			fmt.Fprintf(&b, "#import %s %s from %#x {%#x};\n", typeName, imp.Name, fileID, unknown0)
		}
	}

	seenUser := map[string]bool{}
	vars := make([]*symbols.Variable, 0, len(table.Variables))
	for _, v := range table.Variables {
		if v.Scope == symbols.ScopeStatic {
			vars = append(vars, v)
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Identifier < vars[j].Identifier })

	for _, v := range vars {
		if v.DataType == symbols.DataTypeFunc {
			continue
		}
		name := v.Alias
		if v.Name != nil {
			name = *v.Name
		}
		if v.DataType == symbols.DataTypeUser {
			if seenUser[name] {
				continue
			}
			seenUser[name] = true
			fmt.Fprintf(&b, "static user %s;\n", name)
			continue
		}
		fmt.Fprintf(&b, "static %s %s = %s;\n", v.DataType.String(), name, writeVariableValue(v))
	}

	return b.String()
}

func importTypeName(dt symbols.ImportDataType) string {
	switch dt {
	case symbols.ImportInt:
		return "int"
	case symbols.ImportThread:
		return "thread"
	default:
		return "function"
	}
}

// writeVariableValue renders a static variable's initializer text,
// matching the original's writeVariableValue dispatch by data type.
func writeVariableValue(v *symbols.Variable) string {
	switch val := v.Value.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float32:
		return fmt.Sprintf("%g", val)
	case int32:
		return fmt.Sprintf("%d", val)
	case uint32:
		if v.DataType == symbols.DataTypeMe {
			return "self"
		}
		return fmt.Sprintf("%#x", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
