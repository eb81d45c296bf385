package instructions

import kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"

func errOpCodeNotInVersion(op OpCode, v Version) error {
	return kerr.MakeError(kerr.ErrUnknownOpCode, "%v has no encoding under version %v", op, v)
}
