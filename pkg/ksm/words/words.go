// Package words implements the sequential 32-bit little-endian word
// stream that every KSM binary read/write goes through: bounds-checked
// next/peek/append, plus the length-prefixed null-padded string codec
// shared by names, imports, and static variable initializers.
package words

import (
	"encoding/binary"
	"math"
	"strings"

	kerr "github.com/Manu343726/ksmtool/pkg/ksm/errors"
)

// Word is one 32-bit value at a known position within its section.
type Word struct {
	Index uint32
	Value uint32
}

// Reader walks a []uint32 sequentially with a monotonic cursor.
type Reader struct {
	words  []uint32
	cursor int
}

// NewReader wraps a word slice for sequential reading.
func NewReader(words []uint32) *Reader {
	return &Reader{words: words}
}

// Len returns the number of words remaining.
func (r *Reader) Len() int {
	return len(r.words) - r.cursor
}

// Done reports whether the cursor has reached the end of the stream.
func (r *Reader) Done() bool {
	return r.cursor >= len(r.words)
}

// Next advances the cursor and yields the word at the new position.
func (r *Reader) Next() (Word, error) {
	if r.cursor >= len(r.words) {
		return Word{}, kerr.MakeError(kerr.ErrUnexpectedEnd, "at word %d of %d", r.cursor, len(r.words))
	}
	w := Word{Index: uint32(r.cursor), Value: r.words[r.cursor]}
	r.cursor++
	return w, nil
}

// Peek reads the next word without advancing the cursor.
func (r *Reader) Peek() (Word, error) {
	if r.cursor >= len(r.words) {
		return Word{}, kerr.MakeError(kerr.ErrUnexpectedEnd, "at word %d of %d", r.cursor, len(r.words))
	}
	return Word{Index: uint32(r.cursor), Value: r.words[r.cursor]}, nil
}

// ReadString reads a length-prefixed, null-terminated UTF-8 string
// packed four bytes per word little-endian, trimming at the first
// null byte.
func (r *Reader) ReadString() (string, error) {
	lengthWord, err := r.Next()
	if err != nil {
		return "", kerr.MakeError(err, "reading string length")
	}

	wordCount := int(lengthWord.Value)
	buf := make([]byte, 0, wordCount*4)
	for i := 0; i < wordCount; i++ {
		w, err := r.Next()
		if err != nil {
			return "", kerr.MakeError(err, "reading string body word %d/%d", i, wordCount)
		}
		var bytes [4]byte
		binary.LittleEndian.PutUint32(bytes[:], w.Value)
		buf = append(buf, bytes[:]...)
	}

	if idx := indexOfNull(buf); idx >= 0 {
		buf = buf[:idx]
	}
	return string(buf), nil
}

func indexOfNull(buf []byte) int {
	for i, b := range buf {
		if b == 0 {
			return i
		}
	}
	return -1
}

// Float32 decodes a word as an IEEE-754 little-endian float.
func Float32(value uint32) float32 {
	return math.Float32frombits(value)
}

// EncodeFloat32 encodes a float as its IEEE-754 little-endian bit
// pattern.
func EncodeFloat32(value float32) uint32 {
	return math.Float32bits(value)
}

// Int32 reinterprets a word as a two's-complement signed integer.
func Int32(value uint32) int32 {
	return int32(value)
}

// RoundSignificant rounds a float to n significant figures, matching
// the disassembler's float-rendering convention (6 s.f. by default)
// used to suppress binary/decimal conversion noise.
func RoundSignificant(value float32, n int) float32 {
	if value == 0 {
		return 0
	}
	f := float64(value)
	mag := math.Ceil(math.Log10(math.Abs(f)))
	power := float64(n) - mag
	shift := math.Pow(10, power)
	rounded := math.Round(f*shift) / shift
	return float32(rounded)
}

// Writer accumulates words for a section being built.
type Writer struct {
	words []uint32
}

// NewWriter creates an empty word writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Append adds one word.
func (w *Writer) Append(value uint32) uint32 {
	index := uint32(len(w.words))
	w.words = append(w.words, value)
	return index
}

// Patch overwrites a previously appended word, used for back-patching
// jump targets once addresses are known.
func (w *Writer) Patch(index uint32, value uint32) {
	w.words[index] = value
}

// Len returns the number of words written so far.
func (w *Writer) Len() uint32 {
	return uint32(len(w.words))
}

// Words returns the accumulated word slice.
func (w *Writer) Words() []uint32 {
	return w.words
}

// WriteString appends a length-prefixed string padded to a multiple of
// four bytes with nulls, always including at least one null.
func (w *Writer) WriteString(s string) {
	data := []byte(s)
	data = append(data, 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	wordCount := len(data) / 4
	w.Append(uint32(wordCount))
	for i := 0; i < wordCount; i++ {
		w.Append(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
}

// EscapeString renders a string with standard C escapes for the
// characters the header/body text formats require literal escaping of.
func EscapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
