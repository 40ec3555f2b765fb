// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"encoding/binary"
)

const iptcMetaDataBlockID = 0x0404

var (
	photoshopHeader = []byte("Photoshop 3.0\x00")
	irbSignature    = []byte("8BIM")
)

// locateIPTC returns the IPTC-IIM records in b.
// Some writers store a Photoshop image resource block (IRB) instead of bare records;
// in that case the IPTC resource is extracted. Anything else is returned as is.
func locateIPTC(b []byte) []byte {
	d := bytes.TrimPrefix(b, photoshopHeader)
	if !bytes.HasPrefix(d, irbSignature) {
		return b
	}

	for len(d) >= 12 && bytes.HasPrefix(d, irbSignature) {
		identifier := binary.BigEndian.Uint16(d[4:6])

		// Pascal string, padded to an even size.
		nameSize := 1 + int(d[6])
		if nameSize%2 == 1 {
			nameSize++
		}
		pos := 6 + nameSize
		if len(d) < pos+4 {
			break
		}
		dataSize := int(binary.BigEndian.Uint32(d[pos : pos+4]))
		pos += 4
		if dataSize < 0 || len(d)-pos < dataSize {
			break
		}

		if identifier == iptcMetaDataBlockID {
			return d[pos : pos+dataSize]
		}

		if dataSize%2 != 0 {
			// Skip padding byte.
			dataSize++
		}
		if len(d)-pos < dataSize {
			break
		}
		d = d[pos+dataSize:]
	}

	return b
}

// wrapIPTC wraps IPTC-IIM records in a Photoshop IRB holding a single
// IPTC resource with an empty name, the way Exiv2 writes it.
func wrapIPTC(b []byte) []byte {
	d := make([]byte, 0, 12+len(b)+1)
	d = append(d, irbSignature...)
	d = binary.BigEndian.AppendUint16(d, iptcMetaDataBlockID)
	d = append(d, 0, 0) // empty name, padded
	d = binary.BigEndian.AppendUint32(d, uint32(len(b)))
	d = append(d, b...)
	if len(b)%2 != 0 {
		d = append(d, 0)
	}
	return d
}
