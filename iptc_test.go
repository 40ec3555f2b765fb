// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
)

func irbResource(id uint16, name string, data []byte) []byte {
	b := []byte("8BIM")
	b = binary.BigEndian.AppendUint16(b, id)
	b = append(b, byte(len(name)))
	b = append(b, name...)
	if (1+len(name))%2 == 1 {
		b = append(b, 0)
	}
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, data...)
	if len(data)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func TestLocateIPTC(t *testing.T) {
	c := qt.New(t)

	records := []byte{0x1c, 0x02, 0x78, 0x00, 0x05, 'H', 'e', 'l', 'l', 'o'}

	c.Run("Bare records", func(c *qt.C) {
		c.Assert(locateIPTC(records), qt.DeepEquals, records)
	})

	c.Run("IRB", func(c *qt.C) {
		irb := append(irbResource(0x03ed, "", []byte{1, 2, 3}), irbResource(iptcMetaDataBlockID, "", records)...)
		c.Assert(locateIPTC(irb), qt.DeepEquals, records)
	})

	c.Run("IRB with Photoshop header and names", func(c *qt.C) {
		irb := append([]byte("Photoshop 3.0\x00"), irbResource(0x0409, "thumb", []byte{1})...)
		irb = append(irb, irbResource(iptcMetaDataBlockID, "iptc", records)...)
		c.Assert(locateIPTC(irb), qt.DeepEquals, records)
	})

	c.Run("IRB without IPTC", func(c *qt.C) {
		irb := irbResource(0x03ed, "", []byte{1, 2, 3})
		c.Assert(locateIPTC(irb), qt.DeepEquals, irb)
	})

	c.Run("Truncated IRB", func(c *qt.C) {
		irb := irbResource(iptcMetaDataBlockID, "", records)
		irb = irb[:len(irb)-3]
		c.Assert(locateIPTC(irb), qt.DeepEquals, irb)
	})
}

func TestWrapIPTC(t *testing.T) {
	c := qt.New(t)

	for _, records := range [][]byte{
		{0x1c, 0x02, 0x78, 0x00, 0x05, 'H', 'e', 'l', 'l', 'o'},
		{0x1c, 0x02, 0x78, 0x00, 0x04, 'H', 'e', 'l', 'l'},
		[]byte("8BIM\x04\x04\x00\x00\x00\x00\x00\x01A\x00"),
		{},
	} {
		wrapped := wrapIPTC(records)
		c.Assert(wrapped, qt.DeepEquals, irbResource(iptcMetaDataBlockID, "", records))
		c.Assert(locateIPTC(wrapped), qt.DeepEquals, records)
	}
}
