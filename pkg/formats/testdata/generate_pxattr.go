//go:build ignore

// This program generates the sample PXATTR file used by unit tests.
// Run with: go run generate_pxattr.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

func main() {
	// 4x2 grid, cells 0..7
	var buf bytes.Buffer

	buf.WriteString("pxMAP01\x00")
	binary.Write(&buf, binary.LittleEndian, uint16(4)) // width
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // height
	buf.WriteByte(0)                                    // reserved

	for i := 0; i < 8; i++ {
		buf.WriteByte(byte(i))
	}

	if err := os.WriteFile("sample.pxattr", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}
