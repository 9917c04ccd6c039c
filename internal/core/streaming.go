package core

// streaming.go holds the reader chain ReadCSV decodes through. Each reader
// fixes one artifact of spreadsheet exports without buffering the whole
// document:
//
//   - limitedReader: fails with ErrCSVTooLarge past MaxCSVBytes
//   - bomSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - utf8Sanitizer: replaces invalid UTF-8 sequences with U+FFFD

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

const streamChunk = 32 << 10

// newCSVSource wraps r in the reader chain used for CSV import.
func newCSVSource(r io.Reader, limit int64) io.Reader {
	return newUTF8Sanitizer(newBOMSkippingReader(&limitedReader{r: r, n: limit}))
}

// limitedReader is io.LimitReader that reports overflow instead of EOF.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, ErrCSVTooLarge
	}
	// Allow one byte past the limit so overflow is detected.
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return 0, ErrCSVTooLarge
	}
	return n, err
}

// bomSkippingReader drops a UTF-8 BOM at the start of the stream.
type bomSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{br: bufio.NewReaderSize(r, streamChunk)}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(3)
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, []byte{0xEF, 0xBB, 0xBF}) {
			r.br.Discard(3)
		}
	}
	return r.br.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 with U+FFFD. A multi-byte rune
// split across reads is held back until the rest of it arrives.
type utf8Sanitizer struct {
	r       io.Reader
	chunk   []byte
	pending []byte // incomplete rune from the previous read
	out     []byte // sanitized bytes not yet returned
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, chunk: make([]byte, streamChunk)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	n, err := s.r.Read(s.chunk)
	s.err = err

	data := append(s.pending, s.chunk[:n]...)
	s.pending = nil
	if err == nil {
		if cut := incompleteTail(data); cut > 0 {
			s.pending = append([]byte(nil), data[len(data)-cut:]...)
			data = data[:len(data)-cut]
		}
	}

	if utf8.Valid(data) {
		s.out = data
		return
	}
	s.out = bytes.ToValidUTF8(data, []byte("\uFFFD"))
}

// incompleteTail returns how many trailing bytes of data begin a rune
// that needs more bytes than are present.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if utf8.RuneStart(b) {
			if b >= 0xC0 && i < runeLen(b) {
				return i
			}
			return 0
		}
	}
	return 0
}

// runeLen returns the encoded length announced by a leading byte.
func runeLen(b byte) int {
	switch {
	case b < 0xC0:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
