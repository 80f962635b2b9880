package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/peraccount/internal/encoding"
)

func decodeAll(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestNewUTF8Reader(t *testing.T) {
	const text = "거래일자,적요,출금액,입금액\n2024-03-01,스타벅스,5500,\n"

	eucKR, err := korean.EUCKR.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte("Descrição;Montante\n"))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset
	}{
		{name: "UTF8Passthrough", input: []byte(text), want: text, wantCharset: encoding.UTF8},
		{name: "UTF8BOMStripped", input: append([]byte{0xEF, 0xBB, 0xBF}, text...), want: text, wantCharset: encoding.UTF8},
		{name: "EUCKR", input: eucKR, want: text, wantCharset: encoding.EUCKR},
		{name: "Latin1", input: latin1, want: "Descrição;Montante\n", wantCharset: encoding.Windows1252},
		{name: "UTF16LE", input: utf16, want: text, wantCharset: encoding.UTF16LE},
		{name: "Empty", input: nil, want: "", wantCharset: encoding.UTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decodeAll(t, tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}
