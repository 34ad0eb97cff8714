// Package vmd encodes a retargeted clip into the destination binary
// keyframe container: a legacy Japanese shift-based text encoding plus
// fixed-layout bone-frame and property-keyframe records.
package vmd

import (
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// encodeShiftJIS converts s to the legacy Japanese shift-based code
// page. If any character has no representation in the target encoding,
// the encoder reports an error and the string's raw UTF-8 bytes are
// returned instead, so the write never fails; the writer never returns
// an error.
func encodeShiftJIS(s string) []byte {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), s)
	if err != nil {
		return []byte(s)
	}
	return []byte(encoded)
}

// fixedField shift-encodes s and returns it as a NUL-padded byte slice of
// exactly length bytes, truncating the encoded form if it overruns
// used for the bone-name and model-name fields.
func fixedField(s string, length int) []byte {
	out := make([]byte, length)
	encoded := encodeShiftJIS(s)
	n := len(encoded)
	if n > length {
		n = length
	}
	copy(out, encoded[:n])
	return out
}
