// Package formats provides codecs for Kero Blaster engine resource files.
package formats

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fdeitylink/kerotools/pkg/encoding"
)

// FormatError reports a header that does not match the expected magic.
// Err is the sentinel for the format that was expected.
type FormatError struct {
	Path   string
	Offset int64
	Found  []byte
	Err    error
}

func (e *FormatError) Error() string {
	name := e.Path
	if name == "" {
		name = "<data>"
	}
	return fmt.Sprintf("%s: %v (mismatch at offset %d, found %q)",
		name, e.Err, e.Offset, encoding.TrimNullBytes(e.Found))
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError wraps a read or write failure on a resource file with the file path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// checkMagic reads len(magic) bytes from r and compares them to magic.
func checkMagic(r io.Reader, magic []byte, sentinel error, path string) error {
	header := make([]byte, len(magic))
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return &IOError{Op: "read", Path: path, Err: err}
	}
	if off := magicMismatch(header[:n], magic); off >= 0 {
		return &FormatError{Path: path, Offset: int64(off), Found: header[:n], Err: sentinel}
	}
	return nil
}

// magicMismatch returns the offset of the first byte of header that differs
// from magic, the length of header if it is a short prefix, or -1 on a match.
func magicMismatch(header, magic []byte) int {
	for i, b := range header {
		if b != magic[i] {
			return i
		}
	}
	if len(header) < len(magic) {
		return len(header)
	}
	return -1
}

// readFull is io.ReadFull with a clean EOF reported as truncation.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// writeFile writes data to path, creating or truncating the file.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
