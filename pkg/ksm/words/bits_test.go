package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitViewReadWrite(t *testing.T) {
	var v uint32
	bv := CreateBitView(&v)

	bv.Write(0xab, 8, 8)
	assert.Equal(t, uint32(0xab), bv.Read(8, 8))
	assert.Equal(t, uint32(0), bv.Read(0, 8))
}

func TestBitViewWriteClearsPriorBits(t *testing.T) {
	var v uint32 = 0xffffffff
	bv := CreateBitView(&v)

	bv.Write(0x0, 8, 8)
	assert.Equal(t, uint32(0), bv.Read(8, 8))
	assert.Equal(t, uint32(0xff), bv.Read(0, 8))
}

func TestBoolBytePackingRoundTrip(t *testing.T) {
	var word uint32
	for i := 0; i < 4; i++ {
		word = PackBoolByte(word, i, i%2 == 0)
	}

	for i := 0; i < 4; i++ {
		assert.Equal(t, i%2 == 0, UnpackBoolByte(word, i))
	}
}
