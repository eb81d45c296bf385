package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderNext(t *testing.T) {
	r := NewReader([]uint32{10, 20, 30})

	w, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), w.Index)
	assert.Equal(t, uint32(10), w.Value)

	w, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(20), w.Value)

	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Done())
}

func TestReaderNextPastEnd(t *testing.T) {
	r := NewReader([]uint32{1})

	_, err := r.Next()
	require.NoError(t, err)
	assert.True(t, r.Done())

	_, err = r.Next()
	assert.Error(t, err)
}

func TestReaderPeekDoesNotAdvance(t *testing.T) {
	r := NewReader([]uint32{7, 8})

	peeked, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), peeked.Value)

	next, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, peeked.Value, next.Value)
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "hi", "a string with spaces", "exactly4"}

	for _, s := range cases {
		w := NewWriter()
		w.WriteString(s)

		r := NewReader(w.Words())
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, r.Done(), "reader should be fully consumed after reading its own string")
	}
}

func TestWriteStringPadsToWordMultiple(t *testing.T) {
	w := NewWriter()
	w.WriteString("abc")

	// length word + ceil((3+1)/4) = 1 body word
	assert.Equal(t, uint32(2), w.Len())
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 3.14159, -1000000}

	for _, v := range values {
		assert.Equal(t, v, Float32(EncodeFloat32(v)))
	}
}

func TestInt32Reinterprets(t *testing.T) {
	assert.Equal(t, int32(-1), Int32(0xffffffff))
	assert.Equal(t, int32(1), Int32(1))
}

func TestPatchOverwritesWord(t *testing.T) {
	w := NewWriter()
	idx := w.Append(0)
	w.Append(99)
	w.Patch(idx, 42)

	assert.Equal(t, []uint32{42, 99}, w.Words())
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `hello\nworld`, EscapeString("hello\nworld"))
	assert.Equal(t, `say \"hi\"`, EscapeString(`say "hi"`))
	assert.Equal(t, `back\\slash`, EscapeString(`back\slash`))
}

func TestRoundSignificantSuppressesNoise(t *testing.T) {
	got := RoundSignificant(0.1+0.2, 6)
	assert.InDelta(t, 0.3, got, 1e-6)
}
