// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"encoding/binary"
	"hash/crc32"
)

// pngSignature is the 8 byte signature that starts every PNG stream.
const pngSignature = "\x89PNG\r\n\x1a\n"

// Chunk types this package knows about.
var (
	chunkTypeIHDR = fourCC{'I', 'H', 'D', 'R'}
	chunkTypeIEND = fourCC{'I', 'E', 'N', 'D'}
	chunkTypeEXIF = fourCC{'e', 'X', 'I', 'f'}
	chunkTypeTEXT = fourCC{'t', 'E', 'X', 't'}
	chunkTypeZTXT = fourCC{'z', 'T', 'X', 't'}
	chunkTypeITXT = fourCC{'i', 'T', 'X', 't'}
)

const (
	ihdrLength = 13
	// The PNG specification limits chunk lengths to 2^31-1.
	maxChunkLength = 1<<31 - 1
)

type fourCC [4]byte

func (f fourCC) String() string {
	return string(f[:])
}

// Chunk is a single PNG chunk: a 4 byte type tag and its payload.
type Chunk struct {
	Type [4]byte
	Data []byte
}

// CRC returns the CRC-32 of the chunk's type tag and payload.
func (c Chunk) CRC() uint32 {
	return CRC32(c.Type[:], c.Data)
}

// Bytes returns the chunk framed as it appears in a PNG stream:
// 4 byte big-endian payload length, type tag, payload and 4 byte big-endian CRC.
func (c Chunk) Bytes() []byte {
	b := make([]byte, 0, 12+len(c.Data))
	b = binary.BigEndian.AppendUint32(b, uint32(len(c.Data)))
	b = append(b, c.Type[:]...)
	b = append(b, c.Data...)
	b = binary.BigEndian.AppendUint32(b, c.CRC())
	return b
}

// ParseChunk reads one framed chunk from the start of b.
// It returns the chunk and the number of bytes consumed.
// The CRC is not verified, see Chunk.CRC.
func ParseChunk(b []byte) (Chunk, int, error) {
	if len(b) < 12 {
		return Chunk{}, 0, newFormatErrorf(msgInvalidChunkFraming, "need at least 12 bytes, got %d", len(b))
	}
	length := binary.BigEndian.Uint32(b[:4])
	if length > maxChunkLength || int64(length) > int64(len(b)-12) {
		return Chunk{}, 0, newFormatErrorf(msgInvalidChunkFraming, "chunk length %d exceeds available %d bytes", length, len(b)-12)
	}
	var c Chunk
	copy(c.Type[:], b[4:8])
	end := 8 + int(length)
	c.Data = make([]byte, length)
	copy(c.Data, b[8:end])
	return c, end + 4, nil
}

// CRC32 computes the PNG CRC-32 (the IEEE polynomial as used by zlib)
// over the chunk type tag followed by the chunk data.
func CRC32(typ, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(typ)
	h.Write(data)
	return h.Sum32()
}

// DecodeIHDR returns the image width and height stored in an IHDR chunk payload.
func DecodeIHDR(payload []byte) (width, height uint32, err error) {
	if len(payload) != ihdrLength {
		return 0, 0, newFormatErrorf(msgInvalidIHDR, "expected %d bytes, got %d", ihdrLength, len(payload))
	}
	return binary.BigEndian.Uint32(payload[0:4]), binary.BigEndian.Uint32(payload[4:8]), nil
}
