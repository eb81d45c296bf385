package symbols

import (
	"fmt"

	"github.com/Manu343726/ksmtool/pkg/utils"
)

// DocString renders an ascii bit-frame diagram for each identifier
// class's tag layout, alongside the scope it belongs to.
func DocString() string {
	s := "Identifier tagged-bit-field layouts (32 bit, MSB first):\n\n"

	classes := []struct {
		name   string
		fields []utils.AsciiFrameField
	}{
		{"temp var", []utils.AsciiFrameField{
			{Name: "tag", Begin: 8, Width: 24},
			{Name: "slot", Begin: 0, Width: 8},
		}},
		{"local var", []utils.AsciiFrameField{
			{Name: "tag", Begin: 16, Width: 16},
			{Name: "slot", Begin: 8, Width: 8},
			{Name: "zero", Begin: 0, Width: 8},
		}},
		{"static/const", []utils.AsciiFrameField{
			{Name: "scope", Begin: 28, Width: 4},
			{Name: "slot+offset", Begin: 0, Width: 28},
		}},
		{"anon thread func", []utils.AsciiFrameField{
			{Name: "tag", Begin: 24, Width: 8},
			{Name: "id", Begin: 0, Width: 24},
		}},
	}

	for _, c := range classes {
		s += fmt.Sprintf("%s:\n", c.name)
		s += utils.AsciiFrame(c.fields, 32, "bit", utils.AsciiFrameUnitLayout_RightToLeft, 2)
		s += "\n"
	}

	return s
}
