// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"fmt"
	"strconv"
)

// rawProfileRowBytes is the number of payload bytes per hex row written by ImageMagick.
const rawProfileRowBytes = 36

const hexDigits = "0123456789abcdef"

// RawProfile is binary metadata wrapped in the ImageMagick "raw profile" text layout:
//
//	\n
//	exif\n
//	     124\n
//	45786966000049492a00...\n
type RawProfile struct {
	// Type is the profile type line, e.g. "exif", "iptc" or "xmp".
	Type string
	// DeclaredLength is the byte count given in the header.
	DeclaredLength int
	// Payload is the decoded bytes.
	Payload []byte
}

// DecodeRawProfile decodes a raw profile.
//
// Whitespace around the header lines and between hex digits is ignored,
// as is any other non hex digit character in the body.
// If the number of decoded bytes differs from the declared length,
// the decoded bytes win.
func DecodeRawProfile(text []byte) (RawProfile, error) {
	s := bytes.TrimLeft(text, " \t\r\n\x00")

	typ, s, found := bytes.Cut(s, []byte{'\n'})
	if !found {
		return RawProfile{}, newFormatErrorf(msgInvalidRawProfile, "missing profile type")
	}
	typ = bytes.TrimSpace(typ)
	if len(typ) == 0 {
		return RawProfile{}, newFormatErrorf(msgInvalidRawProfile, "empty profile type")
	}

	s = bytes.TrimLeft(s, " \t\r\n\x00")
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return RawProfile{}, newFormatErrorf(msgInvalidRawProfile, "missing profile length")
	}
	declared, err := strconv.ParseUint(string(s[:n]), 10, 31)
	if err != nil {
		return RawProfile{}, wrapFormatError(msgInvalidRawProfile, err)
	}
	body := s[n:]

	// The declared length is only a size hint.
	payload := make([]byte, 0, min(int(declared), len(body)/2))

	var hi byte
	var odd bool
	for _, c := range body {
		v, ok := unhex(c)
		if !ok {
			continue
		}
		if odd {
			payload = append(payload, hi<<4|v)
		} else {
			hi = v
		}
		odd = !odd
	}
	if odd {
		return RawProfile{}, newFormatError(msgOddHexDigitCount)
	}

	return RawProfile{
		Type:           string(typ),
		DeclaredLength: int(declared),
		Payload:        payload,
	}, nil
}

// EncodeRawProfile encodes payload as a raw profile of the given type,
// using the same layout as ImageMagick.
func EncodeRawProfile(profileType string, payload []byte) []byte {
	rows := (len(payload) + rawProfileRowBytes - 1) / rawProfileRowBytes
	b := make([]byte, 0, len(profileType)+12+len(payload)*2+rows+1)
	b = append(b, '\n')
	b = append(b, profileType...)
	b = fmt.Appendf(b, "\n%8d", len(payload))
	for i, c := range payload {
		if i%rawProfileRowBytes == 0 {
			b = append(b, '\n')
		}
		b = append(b, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return append(b, '\n')
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
