package container

import (
	"encoding/binary"
	"os"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
)

// ReadFile loads a .ksm file from disk into its raw little-endian word
// array.
func ReadFile(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerr.MakeError(err, "reading %s", path)
	}
	if len(data)%4 != 0 {
		return nil, kerr.MakeError(kerr.ErrSectionOverrun, "%s size %d is not word-aligned", path, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return words, nil
}

// WriteFile serializes a raw little-endian word array to a .ksm file.
func WriteFile(path string, raw []uint32) error {
	data := make([]byte, len(raw)*4)
	for i, w := range raw {
		binary.LittleEndian.PutUint32(data[i*4:i*4+4], w)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return kerr.MakeError(err, "writing %s", path)
	}
	return nil
}
