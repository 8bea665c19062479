package dxf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/spherical/pdf2cad/internal/domain"
)

// CodePage is the $DWGCODEPAGE value matching the encoder's output bytes
const CodePage = "ANSI_1252"

// Encoder writes a Document as ASCII group-code/value lines. It does not
// validate what it is given.
type Encoder struct {
	w       *bufio.Writer
	written int64
	buf     []byte
}

// NewEncoder returns an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes every section of doc followed by the EOF marker
func (e *Encoder) Encode(doc *Document) error {
	for _, s := range doc.Sections {
		if err := e.pair(CodeEntityType, "SECTION"); err != nil {
			return err
		}
		if err := e.pair(CodeName, s.Name); err != nil {
			return err
		}
		for _, p := range s.Pairs {
			if err := e.pair(p.Code, p.Value); err != nil {
				return err
			}
		}
		if err := e.pair(CodeEntityType, "ENDSEC"); err != nil {
			return err
		}
	}
	if err := e.pair(CodeEntityType, "EOF"); err != nil {
		return err
	}
	if err := e.w.Flush(); err != nil {
		return domain.IOError("flush DXF stream", err)
	}
	return nil
}

// Written returns the number of bytes handed to the underlying writer so far
func (e *Encoder) Written() int64 {
	return e.written
}

func (e *Encoder) pair(code int, value string) error {
	e.buf = strconv.AppendInt(e.buf[:0], int64(code), 10)
	e.buf = append(e.buf, '\n')
	e.buf = AppendValue(e.buf, value)
	e.buf = append(e.buf, '\n')
	n, err := e.w.Write(e.buf)
	e.written += int64(n)
	if err != nil {
		return domain.IOError(fmt.Sprintf("write group %d", code), err)
	}
	return nil
}

// AppendValue appends value transcoded to Windows-1252. Runes the code page
// cannot carry are written as \U+XXXX escapes.
func AppendValue(dst []byte, value string) []byte {
	for i := 0; i < len(value); {
		c := value[i]
		if c < utf8.RuneSelf {
			dst = append(dst, c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(value[i:])
		i += size
		if b, ok := charmap.Windows1252.EncodeRune(r); ok && r != utf8.RuneError {
			dst = append(dst, b)
			continue
		}
		dst = fmt.Appendf(dst, "\\U+%04X", r)
	}
	return dst
}
