// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import "bytes"

// exifHeader is the Exif identifier code from the JPEG APP1 segment.
// ImageMagick and Exiv2 keep it in the Exif raw profile; the eXIf chunk does not.
var exifHeader = []byte("Exif\x00\x00")

// trimExifHeader returns the bytes after the first Exif identifier code in b.
// Any padding before the identifier is dropped with it.
func trimExifHeader(b []byte) []byte {
	if i := bytes.Index(b, exifHeader); i >= 0 {
		return b[i+len(exifHeader):]
	}
	return b
}
