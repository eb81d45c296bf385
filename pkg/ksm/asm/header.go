package asm

import (
	"strconv"
	"strings"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
	"github.com/Manu343726/ksmtool/pkg/ksm/instructions"
	"github.com/Manu343726/ksmtool/pkg/ksm/symbols"
)

// parseHeader reads the HKSM header text (#offset, #import, and static
// declarations) into table, mirroring disasm's buildHeader in reverse.
func parseHeader(source string, table *symbols.Table, version instructions.Version) error {
	lines := strings.Split(source, "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, ";")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "#offset":
			n, err := parseUint(fields[1])
			if err != nil {
				return kerr.MakeError(err, "parsing #offset value %q", fields[1])
			}
			table.SlotOffset = n
		case "#import":
			if err := parseImportLine(fields, table, version); err != nil {
				return err
			}
		case "static":
			if err := parseStaticLine(fields, line, table); err != nil {
				return err
			}
		default:
			return kerr.MakeError(kerr.ErrUnexpectedToken, "unrecognized header directive %q", fields[0])
		}
	}
	return nil
}

func parseImportLine(fields []string, table *symbols.Table, version instructions.Version) error {
	if len(fields) < 3 {
		return kerr.MakeError(kerr.ErrUnexpectedToken, "malformed #import line")
	}
	var dataType symbols.ImportDataType
	switch fields[1] {
	case "int":
		dataType = symbols.ImportInt
	case "thread":
		dataType = symbols.ImportThread
	default:
		dataType = symbols.ImportFunction
	}
	name := fields[2]
	imp := table.GetOrCreateImport(name, dataType)
	imp.TimesUsed = 0

	if version != instructions.V132 && len(fields) >= 5 && fields[3] == "from" {
		fileID, err := parseUint(fields[4])
		if err == nil {
			imp.FileID = &fileID
		}
		if len(fields) >= 6 {
			unk := strings.Trim(fields[5], "{}")
			if u, err := parseUint(unk); err == nil {
				imp.Unknown0 = &u
			}
		}
	}
	return nil
}

func parseStaticLine(fields []string, fullLine string, table *symbols.Table) error {
	if len(fields) < 3 {
		return kerr.MakeError(kerr.ErrUnexpectedToken, "malformed static declaration")
	}
	typeName := fields[1]
	if typeName == "user" {
		name := strings.TrimSuffix(fields[2], ";")
		id := table.AllocateStatic()
		table.Variables[id] = &symbols.Variable{Name: &name, Identifier: id, Alias: symbols.DefaultAlias(id), Scope: symbols.ScopeStatic, DataType: symbols.DataTypeUser, HasDataType: true}
		return nil
	}

	dataType, ok := symbols.DataTypeFromString(typeName)
	if !ok {
		return kerr.MakeError(kerr.ErrUnexpectedToken, "unknown static data type %q", typeName)
	}
	name := fields[2]
	eq := strings.Index(fullLine, "=")
	var value any
	if eq >= 0 {
		literal := strings.TrimSpace(fullLine[eq+1:])
		value = parseStaticLiteral(literal, dataType)
	}
	id := table.AllocateStatic()
	table.Variables[id] = &symbols.Variable{Name: &name, Identifier: id, Alias: symbols.DefaultAlias(id), Value: value, Scope: symbols.ScopeStatic, DataType: dataType, HasDataType: true}
	return nil
}

func parseStaticLiteral(literal string, dataType symbols.DataType) any {
	switch dataType {
	case symbols.DataTypeString:
		return strings.Trim(literal, `"`)
	case symbols.DataTypeBool:
		return literal == "true"
	case symbols.DataTypeFloat:
		f, _ := strconv.ParseFloat(literal, 32)
		return float32(f)
	case symbols.DataTypeMe:
		return uint32(0)
	case symbols.DataTypeHex:
		n, _ := parseUint(literal)
		return n
	default:
		n, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return int32(0)
		}
		return int32(n)
	}
}

func parseUint(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(n), err
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}
