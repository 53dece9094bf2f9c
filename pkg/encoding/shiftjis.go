// Package encoding provides text encoding utilities for Kero Blaster engine resource files.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISToUTF8 converts Shift-JIS encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func ShiftJISToUTF8(data []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToShiftJIS converts a UTF-8 string to Shift-JIS encoded bytes.
// Returns the original bytes if the string has no Shift-JIS representation.
func UTF8ToShiftJIS(s string) []byte {
	encoder := japanese.ShiftJIS.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// ShiftJISLen returns the number of bytes s occupies once encoded as Shift-JIS.
// The engine stores resource names in fixed Shift-JIS fields, so name limits
// are byte limits rather than rune limits.
func ShiftJISLen(s string) int {
	return len(UTF8ToShiftJIS(s))
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// FixedStringToUTF8 converts a fixed-size, null-padded Shift-JIS field to UTF-8.
func FixedStringToUTF8(data []byte) string {
	if nullIdx := bytes.IndexByte(data, 0); nullIdx >= 0 {
		data = data[:nullIdx]
	}
	return ShiftJISToUTF8(data)
}

// UTF8ToFixedString converts s to a fixed-size Shift-JIS field padded with null bytes.
// Input longer than size is truncated.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToShiftJIS(s))
	return result
}
