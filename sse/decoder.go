package sse

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// scratchSize bounds one Transform call. Any size of at least utf8.UTFMax
// guarantees progress.
const scratchSize = 4096

// Decoder accumulates byte chunks and splits them into logical lines.
//
// Decoding state persists across Feed calls: a multi-byte UTF-8 sequence
// split between two chunks is held back until it is complete, and invalid
// sequences are replaced with U+FFFD. A Decoder is owned by one session and
// is not safe for concurrent use.
type Decoder struct {
	utf8    transform.Transformer
	pending []byte          // undecoded tail: an incomplete UTF-8 sequence
	buf     strings.Builder // decoded text after the last line terminator
	scratch []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		utf8:    unicode.UTF8.NewDecoder(),
		scratch: make([]byte, scratchSize),
	}
}

// Feed decodes chunk and returns every line completed by it, in order, with
// the terminator stripped. The text after the last terminator is buffered
// until a later Feed or Flush.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	d.decode(chunk, false)
	return d.split()
}

// Flush decodes any held-back bytes and returns the final unterminated line.
// ok is false when that line is empty after trimming whitespace. The
// Decoder is empty afterwards.
func (d *Decoder) Flush() (line string, ok bool) {
	d.decode(nil, true)
	line = d.buf.String()
	d.buf.Reset()
	d.utf8.Reset()
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	return line, true
}

// Buffered returns the decoded text that has not been emitted as a line yet.
func (d *Decoder) Buffered() string {
	return d.buf.String()
}

func (d *Decoder) decode(chunk []byte, atEOF bool) {
	src := append(d.pending, chunk...)
	for {
		nDst, nSrc, err := d.utf8.Transform(d.scratch, src, atEOF)
		d.buf.Write(d.scratch[:nDst])
		src = src[nSrc:]
		if errors.Is(err, transform.ErrShortDst) {
			continue
		}
		// ErrShortSrc: src ends inside a multi-byte sequence. Keep it for the
		// next chunk. The UTF-8 decoder reports no other errors; invalid
		// input is replaced rather than rejected.
		break
	}
	d.pending = append(d.pending[:0], src...)
}

func (d *Decoder) split() []string {
	text := d.buf.String()
	last := strings.LastIndexByte(text, lineTerminator)
	if last < 0 {
		return nil
	}
	lines := strings.Split(text[:last], string(lineTerminator))
	d.buf.Reset()
	d.buf.WriteString(text[last+1:])
	return lines
}
