package excel

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeReader wraps r so that it yields UTF-8 for the named encoding
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	case EncodingLatin1, "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingASCII:
		return &asciiReader{r: bufio.NewReader(r)}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// asciiReader fails on the first byte outside 7-bit ASCII
type asciiReader struct {
	r      *bufio.Reader
	offset int64
}

func (a *asciiReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] >= utf8.RuneSelf {
			return i, fmt.Errorf("non-ascii byte 0x%02x at offset %d", p[i], a.offset+int64(i))
		}
	}
	a.offset += int64(n)
	return n, err
}
