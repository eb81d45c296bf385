package instructions

import (
	"fmt"

	"github.com/Manu343726/ksmtool/pkg/utils"
)

// DocString renders the opcode table as a reference document, one
// line per opcode naming its mnemonic and binary value in each
// version it exists under.
func DocString() string {
	s := "Opcode table:\n"
	for _, d := range Descriptors {
		s += fmt.Sprintf("  %-32s v1.3.0=%s", d.Mnemonic, utils.FormatUintHex(uint64(d.V130), 2))
		if d.InV132 {
			s += fmt.Sprintf(" v1.3.2=%s", utils.FormatUintHex(uint64(d.V132), 2))
		} else {
			s += " v1.3.2=absent"
		}
		s += "\n"
	}
	return s
}
