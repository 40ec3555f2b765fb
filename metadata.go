// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import "bytes"

// Block is a metadata block decoded from or to be encoded into a PNG chunk.
// Data holds the Exif (TIFF structure), IPTC-IIM or XMP bytes,
// or for COMMENT, the UTF-8 text.
// Empty Exif, IPTC and XMP data is decoded as nil.
type Block struct {
	Source Source
	Data   []byte
}

// ExifBlock returns an EXIF block.
func ExifBlock(b []byte) Block {
	return Block{Source: EXIF, Data: b}
}

// IPTCBlock returns an IPTC block.
func IPTCBlock(b []byte) Block {
	return Block{Source: IPTC, Data: b}
}

// XMPBlock returns an XMP block.
func XMPBlock(b []byte) Block {
	return Block{Source: XMP, Data: b}
}

// CommentBlock returns a COMMENT block.
func CommentBlock(s string) Block {
	return Block{Source: COMMENT, Data: []byte(s)}
}

// Text returns Data as a string.
func (b Block) Text() string {
	return string(b.Data)
}

// ApplyTo hands the block over to s.
func (b Block) ApplyTo(s Store) {
	switch b.Source {
	case EXIF:
		s.SetExif(b.Data)
	case IPTC:
		s.SetIPTC(b.Data)
	case XMP:
		s.SetXMP(b.Data)
	case COMMENT:
		s.SetComment(b.Text())
	}
}

// Store receives decoded metadata blocks.
type Store interface {
	SetExif(b []byte)
	SetIPTC(b []byte)
	SetXMP(b []byte)
	SetComment(s string)
}

var _ Store = (*Metadata)(nil)

// Metadata is an in-memory Store.
// The last block set per source wins.
type Metadata struct {
	Exif    []byte
	IPTC    []byte
	XMP     []byte
	Comment string
}

// SetExif sets the Exif block.
func (m *Metadata) SetExif(b []byte) {
	m.Exif = b
}

// SetIPTC sets the IPTC block.
func (m *Metadata) SetIPTC(b []byte) {
	m.IPTC = b
}

// SetXMP sets the XMP block.
func (m *Metadata) SetXMP(b []byte) {
	m.XMP = b
}

// SetComment sets the comment.
func (m *Metadata) SetComment(s string) {
	m.Comment = s
}

// Add adds a block to the correct source.
func (m *Metadata) Add(b Block) {
	b.ApplyTo(m)
}

// Blocks returns the non-empty blocks in Exif, IPTC, XMP, comment order.
func (m Metadata) Blocks() []Block {
	var blocks []Block
	if len(m.Exif) > 0 {
		blocks = append(blocks, ExifBlock(m.Exif))
	}
	if len(m.IPTC) > 0 {
		blocks = append(blocks, IPTCBlock(m.IPTC))
	}
	if len(m.XMP) > 0 {
		blocks = append(blocks, XMPBlock(m.XMP))
	}
	if m.Comment != "" {
		blocks = append(blocks, CommentBlock(m.Comment))
	}
	return blocks
}

// EncodeMetadataChunks encodes all non-empty blocks in m as PNG chunks,
// concatenated in the order returned by Blocks.
func EncodeMetadataChunks(m Metadata, compress bool) []byte {
	var buf bytes.Buffer
	for _, b := range m.Blocks() {
		buf.Write(EncodeMetadataChunk(b, compress))
	}
	return buf.Bytes()
}
