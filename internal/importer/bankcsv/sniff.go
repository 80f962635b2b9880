package bankcsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

const sniffLen = 3072

// Banks offer statements as spreadsheets and PDFs too. Those are refused
// with a hint instead of failing column detection.
var binaryTypes = []string{
	"application/zip",
	"application/x-ole-storage",
	"application/pdf",
	"image/png",
	"image/jpeg",
}

// sniff returns a reader over the whole of r, or a validation error when the
// content is a known binary format. Children such as xlsx are matched
// through their parent container.
func sniff(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("peek: %w", err)
	}

	detected := mimetype.Detect(head)

	for m := detected; m != nil; m = m.Parent() {
		for _, t := range binaryTypes {
			if m.Is(t) {
				return nil, apperr.Validation("file", fmt.Sprintf("is %s (%s), export the statement as CSV", detected.Extension(), detected.String()))
			}
		}
	}

	return br, nil
}
