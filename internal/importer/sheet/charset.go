package sheet

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the text encoding of a delimited statement export.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	Latin9      Charset = "ISO-8859-15"
)

const sampleSize = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// latinCharsets are the chardet guesses trusted for Spanish statements.
// Any other single-byte guess on a short sample is treated as Windows-1252,
// which is what Chilean bank portals and Excel on Windows write.
var latinCharsets = map[string]Charset{
	"ISO-8859-1":   Windows1252,
	"windows-1252": Windows1252,
	"ISO-8859-15":  Latin9,
}

// DetectCharset guesses the encoding of sample, the head of a file, and
// returns the length of its byte-order mark, if any.
func DetectCharset(sample []byte) (Charset, int) {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset, len(b.prefix)
		}
	}

	if utf8.Valid(trimPartialRune(sample)) {
		return UTF8, 0
	}

	if res, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		if cs, ok := latinCharsets[res.Charset]; ok {
			return cs, 0
		}
	}

	return Windows1252, 0
}

// trimPartialRune drops a multi-byte sequence cut off by the sample limit.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if !utf8.RuneStart(b[len(b)-i]) {
			continue
		}

		if !utf8.FullRune(b[len(b)-i:]) {
			return b[:len(b)-i]
		}

		break
	}

	return b
}

func (c Charset) decoder() *encoding.Decoder {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case Latin9:
		return charmap.ISO8859_15.NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	}

	return nil
}

// NewUTF8Reader returns a reader that decodes r to UTF-8, dropping any
// byte-order mark.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	cs, bom := DetectCharset(sample)
	if _, err := br.Discard(bom); err != nil {
		return nil, fmt.Errorf("discard byte-order mark: %w", err)
	}

	slog.Debug("decoding delimited statement", "charset", cs)

	dec := cs.decoder()
	if dec == nil {
		return br, nil
	}

	return transform.NewReader(br, dec), nil
}
