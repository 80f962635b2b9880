// Package encoding turns uploaded statement files into UTF-8.
//
// Korean banks still export EUC-KR (or its CP949 superset) and some
// spreadsheet tools save Windows-1252, so the importer never assumes UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Charset names the decoding chosen by Detect.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	EUCKR       Charset = "EUC-KR"
	Windows1252 Charset = "windows-1252"
)

func (c Charset) decoder() *encoding.Decoder {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case EUCKR:
		return korean.EUCKR.NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	}

	return nil
}

// Detect guesses the charset of a sample. The order is BOM, valid UTF-8,
// EUC-KR Hangul pairs, chardet, then Windows-1252.
func Detect(sample []byte) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case validUTF8Prefix(sample):
		return UTF8
	case looksKorean(sample):
		return EUCKR
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case "EUC-KR":
			return EUCKR
		case "ISO-8859-1", "windows-1252":
			return Windows1252
		}
	}

	return Windows1252
}

// validUTF8Prefix allows the sample to end in the middle of a rune.
func validUTF8Prefix(b []byte) bool {
	for cut := 0; cut < utf8.UTFMax && cut <= len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) {
			return true
		}
	}

	return false
}

// looksKorean reports whether the high bytes pair up as EUC-KR Hangul
// (lead 0xB0-0xC8, trail 0xA1-0xFE).
func looksKorean(b []byte) bool {
	pairs, stray := 0, 0

	for i := 0; i < len(b); i++ {
		if b[i] < 0x80 {
			continue
		}

		if i+1 == len(b) {
			break
		}

		if b[i] >= 0xB0 && b[i] <= 0xC8 && b[i+1] >= 0xA1 && b[i+1] <= 0xFE {
			pairs++
			i++

			continue
		}

		stray++
	}

	return pairs > 0 && stray == 0
}

// NewUTF8Reader returns a reader that yields r decoded to UTF-8, with any
// UTF-8 BOM removed.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(sample)

	if bytes.HasPrefix(sample, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
	}

	dec := charset.decoder()
	if dec == nil {
		return br, charset, nil
	}

	return transform.NewReader(br, dec), charset, nil
}
