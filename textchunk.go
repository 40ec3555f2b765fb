// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ChunkKind is one of the three PNG text chunk types.
type ChunkKind int

const (
	// ChunkTEXt is an uncompressed Latin-1 text chunk.
	ChunkTEXt ChunkKind = iota
	// ChunkZTXt is a compressed Latin-1 text chunk.
	ChunkZTXt
	// ChunkITXt is an international (UTF-8) text chunk, optionally compressed.
	ChunkITXt
)

// maxKeywordLength is the maximum keyword length in bytes as defined by the PNG specification.
const maxKeywordLength = 79

// String returns the chunk type tag, e.g. "tEXt".
func (k ChunkKind) String() string {
	switch k {
	case ChunkTEXt, ChunkZTXt, ChunkITXt:
		return k.chunkType().String()
	default:
		return fmt.Sprintf("ChunkKind(%d)", int(k))
	}
}

func (k ChunkKind) chunkType() fourCC {
	switch k {
	case ChunkTEXt:
		return chunkTypeTEXT
	case ChunkZTXt:
		return chunkTypeZTXT
	case ChunkITXt:
		return chunkTypeITXT
	default:
		return fourCC{}
	}
}

// ChunkKindFromType returns the text chunk kind for the given chunk type tag.
// The second return value is false if typ is not a text chunk.
func ChunkKindFromType(typ [4]byte) (ChunkKind, bool) {
	switch fourCC(typ) {
	case chunkTypeTEXT:
		return ChunkTEXt, true
	case chunkTypeZTXT:
		return ChunkZTXt, true
	case chunkTypeITXT:
		return ChunkITXt, true
	default:
		return 0, false
	}
}

// TextChunk is the structural content of a tEXt, zTXt or iTXt chunk payload.
type TextChunk struct {
	Kind    ChunkKind
	Keyword string

	// Compressed is always true for zTXt and always false for tEXt.
	Compressed bool
	// CompressionMethod is stored as read. Only 0 (DEFLATE) is valid for compressed content.
	CompressionMethod byte

	// LanguageTag and TranslatedKeyword are only used by iTXt.
	LanguageTag       string
	TranslatedKeyword string

	// Text holds the decompressed content.
	// This is Latin-1 for tEXt and zTXt and UTF-8 for iTXt.
	Text []byte

	// CompressedText holds the compressed content as read by ParseTextChunk.
	// If set, Payload writes it as is instead of compressing Text,
	// so set it to nil after changing Text.
	CompressedText []byte
}

// ParseTextChunk splits a text chunk payload into its fields,
// decompressing the content if needed.
func ParseTextChunk(kind ChunkKind, payload []byte) (TextChunk, error) {
	keyword, rest, err := splitKeyword(payload)
	if err != nil {
		return TextChunk{}, err
	}

	tc := TextChunk{Kind: kind, Keyword: string(keyword)}

	switch kind {
	case ChunkTEXt:
		tc.Text = bytes.Clone(rest)
	case ChunkZTXt:
		if len(rest) < 1 {
			return TextChunk{}, newFormatError(msgTruncatedChunk)
		}
		tc.Compressed = true
		tc.CompressionMethod = rest[0]
		if tc.CompressionMethod != compressionMethodDeflate {
			return TextChunk{}, newFormatErrorf(msgUnsupportedMethod, "method %d", tc.CompressionMethod)
		}
		if tc.Text, err = decompressText(rest[1:]); err != nil {
			return TextChunk{}, err
		}
		tc.CompressedText = bytes.Clone(rest[1:])
	case ChunkITXt:
		if len(rest) < 2 {
			return TextChunk{}, newFormatError(msgTruncatedChunk)
		}
		flag := rest[0]
		tc.CompressionMethod = rest[1]
		switch flag {
		case 0:
		case 1:
			tc.Compressed = true
			if tc.CompressionMethod != compressionMethodDeflate {
				return TextChunk{}, newFormatErrorf(msgUnsupportedMethod, "method %d", tc.CompressionMethod)
			}
		default:
			return TextChunk{}, newFormatErrorf(msgInvalidFlag, "flag %d", flag)
		}

		var lang, translated []byte
		var found bool
		if lang, rest, found = bytes.Cut(rest[2:], []byte{0}); !found {
			return TextChunk{}, newFormatError(msgTruncatedChunk)
		}
		if translated, rest, found = bytes.Cut(rest, []byte{0}); !found {
			return TextChunk{}, newFormatError(msgTruncatedChunk)
		}
		tc.LanguageTag = string(lang)
		tc.TranslatedKeyword = string(translated)

		if tc.Compressed {
			if tc.Text, err = decompressText(rest); err != nil {
				return TextChunk{}, err
			}
			tc.CompressedText = bytes.Clone(rest)
		} else {
			tc.Text = bytes.Clone(rest)
		}
	default:
		return TextChunk{}, newFormatErrorf(msgUnsupportedChunkType, "%s", kind)
	}

	return tc, nil
}

// Payload assembles the chunk payload, compressing the content if needed.
// For chunks produced by ParseTextChunk, this reproduces the original payload.
func (t TextChunk) Payload() ([]byte, error) {
	if err := validateKeyword([]byte(t.Keyword)); err != nil {
		return nil, err
	}
	if t.Kind == ChunkITXt {
		if bytes.IndexByte([]byte(t.LanguageTag), 0) >= 0 {
			return nil, newFormatErrorf(msgInvalidITXtField, "NUL in language tag")
		}
		if bytes.IndexByte([]byte(t.TranslatedKeyword), 0) >= 0 {
			return nil, newFormatErrorf(msgInvalidITXtField, "NUL in translated keyword")
		}
	}

	b := make([]byte, 0, len(t.Keyword)+len(t.LanguageTag)+len(t.TranslatedKeyword)+len(t.Text)+5)
	b = append(b, t.Keyword...)
	b = append(b, 0)

	switch t.Kind {
	case ChunkTEXt:
		b = append(b, t.Text...)
	case ChunkZTXt:
		if t.CompressionMethod != compressionMethodDeflate {
			return nil, newFormatErrorf(msgUnsupportedMethod, "method %d", t.CompressionMethod)
		}
		compressed, err := t.compressedText()
		if err != nil {
			return nil, err
		}
		b = append(b, t.CompressionMethod)
		b = append(b, compressed...)
	case ChunkITXt:
		var flag byte
		text := t.Text
		if t.Compressed {
			if t.CompressionMethod != compressionMethodDeflate {
				return nil, newFormatErrorf(msgUnsupportedMethod, "method %d", t.CompressionMethod)
			}
			flag = 1
			var err error
			if text, err = t.compressedText(); err != nil {
				return nil, err
			}
		}
		b = append(b, flag, t.CompressionMethod)
		b = append(b, t.LanguageTag...)
		b = append(b, 0)
		b = append(b, t.TranslatedKeyword...)
		b = append(b, 0)
		b = append(b, text...)
	default:
		return nil, newFormatErrorf(msgUnsupportedChunkType, "%s", t.Kind)
	}

	return b, nil
}

func (t TextChunk) compressedText() ([]byte, error) {
	if t.CompressedText != nil {
		return t.CompressedText, nil
	}
	return Compress(t.Text)
}

// String returns the content as UTF-8.
// tEXt and zTXt content is converted from Latin-1.
func (t TextChunk) String() string {
	if t.Kind == ChunkITXt {
		return string(t.Text)
	}
	return latin1ToUTF8(t.Text)
}

// ExtractKeyword returns the keyword of a text chunk payload.
// If stripHeader is set, payload is expected to start with the 8 byte chunk
// header (length and type tag), which is skipped. The type tag must match kind.
func ExtractKeyword(kind ChunkKind, payload []byte, stripHeader bool) ([]byte, error) {
	typ := kind.chunkType()
	if typ == (fourCC{}) {
		return nil, newFormatErrorf(msgUnsupportedChunkType, "%s", kind)
	}
	if stripHeader {
		if len(payload) < 8 {
			return nil, newFormatError(msgTruncatedChunk)
		}
		if !bytes.Equal(payload[4:8], typ[:]) {
			return nil, newFormatErrorf(msgUnsupportedChunkType, "expected %s, got %q", kind, payload[4:8])
		}
		payload = payload[8:]
	}
	keyword, _, err := splitKeyword(payload)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(keyword), nil
}

// splitKeyword returns the keyword and the bytes after its NUL separator.
func splitKeyword(payload []byte) (keyword, rest []byte, err error) {
	keyword, rest, found := bytes.Cut(payload, []byte{0})
	if !found {
		if len(payload) == 0 || len(payload) > maxKeywordLength {
			return nil, nil, newFormatError(msgInvalidKeyword)
		}
		return nil, nil, newFormatError(msgTruncatedChunk)
	}
	if err := validateKeyword(keyword); err != nil {
		return nil, nil, err
	}
	return keyword, rest, nil
}

// validateKeyword checks that keyword is 1-79 printable Latin-1 characters.
func validateKeyword(keyword []byte) error {
	if len(keyword) == 0 || len(keyword) > maxKeywordLength {
		return newFormatErrorf(msgInvalidKeyword, "length %d", len(keyword))
	}
	for _, c := range keyword {
		if c < 0x20 || (c > 0x7e && c < 0xa1) {
			return newFormatErrorf(msgInvalidKeyword, "invalid character 0x%02x", c)
		}
	}
	return nil
}

func decompressText(b []byte) ([]byte, error) {
	text, err := Decompress(b)
	if err != nil {
		return nil, wrapFormatError(msgDecompressFailed, err)
	}
	return text, nil
}

func latin1ToUTF8(b []byte) string {
	// ISO 8859-1 maps every byte, so this never fails.
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s)
}
