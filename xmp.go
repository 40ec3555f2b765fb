// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import "bytes"

// trimXMPPacket removes anything before the first '<', e.g. a byte order mark.
func trimXMPPacket(b []byte) []byte {
	if i := bytes.IndexByte(b, '<'); i > 0 {
		b = b[i:]
	}
	return b
}
