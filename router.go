// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// EncodingFamily describes how metadata is stored in a text chunk's content.
type EncodingFamily int

const (
	// RawProfileHex is the ImageMagick ASCII hex raw profile, see RawProfile.
	RawProfileHex EncodingFamily = iota + 1
	// DirectUTF8 is a UTF-8 packet stored as is, e.g. Adobe's XMP.
	DirectUTF8
	// PlainText is free text.
	PlainText
)

func (f EncodingFamily) String() string {
	switch f {
	case RawProfileHex:
		return "RawProfileHex"
	case DirectUTF8:
		return "DirectUTF8"
	case PlainText:
		return "PlainText"
	default:
		return fmt.Sprintf("EncodingFamily(%d)", int(f))
	}
}

// Keywords written by this package.
const (
	KeywordRawProfileExif = "Raw profile type exif"
	KeywordRawProfileIPTC = "Raw profile type iptc"
	KeywordRawProfileXMP  = "Raw profile type xmp"
	KeywordXMP            = "XML:com.adobe.xmp"
	KeywordDescription    = "Description"
)

// Route is where a keyword's content ends up.
type Route struct {
	Source Source
	Family EncodingFamily
}

// keywordRoutes maps exact keywords to routes. It must not be modified.
var keywordRoutes = map[string]Route{
	KeywordRawProfileExif:   {EXIF, RawProfileHex},
	"Raw profile type APP1": {EXIF, RawProfileHex},
	KeywordRawProfileIPTC:   {IPTC, RawProfileHex},
	KeywordRawProfileXMP:    {XMP, RawProfileHex},
	KeywordXMP:              {XMP, DirectUTF8},

	// Predefined keywords from the PNG specification.
	"Title":            {COMMENT, PlainText},
	"Author":           {COMMENT, PlainText},
	KeywordDescription: {COMMENT, PlainText},
	"Copyright":        {COMMENT, PlainText},
	"Creation Time":    {COMMENT, PlainText},
	"Software":         {COMMENT, PlainText},
	"Disclaimer":       {COMMENT, PlainText},
	"Warning":          {COMMENT, PlainText},
	"Source":           {COMMENT, PlainText},
	"Comment":          {COMMENT, PlainText},
}

type sourceEncoding struct {
	keyword     string
	family      EncodingFamily
	profileType string
}

// sourceEncodings is the inverse of keywordRoutes used when encoding.
var sourceEncodings = map[Source]sourceEncoding{
	EXIF:    {KeywordRawProfileExif, RawProfileHex, "exif"},
	IPTC:    {KeywordRawProfileIPTC, RawProfileHex, "iptc"},
	XMP:     {KeywordXMP, DirectUTF8, ""},
	COMMENT: {KeywordDescription, PlainText, ""},
}

// RouteKeyword returns the route for the given keyword.
// The second return value is false if the keyword is not recognized.
func RouteKeyword(keyword string) (Route, bool) {
	r, ok := keywordRoutes[keyword]
	return r, ok
}

// DecodeTextChunk parses a tEXt, zTXt or iTXt payload and decodes any metadata it carries.
// The second return value is false if the keyword is not recognized; this is not an error.
//
// Errors are local to the chunk: callers decoding a full image should
// drop the chunk and continue.
func DecodeTextChunk(kind ChunkKind, payload []byte) (Block, bool, error) {
	tc, err := ParseTextChunk(kind, payload)
	if err != nil {
		return Block{}, false, err
	}
	return decodeText(tc)
}

func decodeText(tc TextChunk) (Block, bool, error) {
	r, ok := keywordRoutes[tc.Keyword]
	if !ok {
		return Block{}, false, nil
	}

	var data []byte
	switch r.Family {
	case RawProfileHex:
		p, err := DecodeRawProfile(tc.Text)
		if err != nil {
			return Block{}, false, err
		}
		data = p.Payload
	case DirectUTF8:
		data = tc.Text
	case PlainText:
		return CommentBlock(tc.String()), true, nil
	}

	switch r.Source {
	case EXIF:
		data = trimExifHeader(data)
	case IPTC:
		data = locateIPTC(data)
	case XMP:
		data = trimXMPPacket(data)
	}
	if len(data) == 0 {
		data = nil
	}

	return Block{Source: r.Source, Data: data}, true, nil
}

// EncodeMetadataChunk encodes b as a complete PNG chunk (length, type, payload and CRC),
// ready to be written to a PNG stream.
//
// Exif and IPTC are written as raw profiles in a tEXt chunk (zTXt if compress is set),
// with Exif prefixed by its identifier code and IPTC wrapped in a Photoshop IRB.
// XMP is written as an iTXt chunk. Comments use tEXt/zTXt if the text is ASCII, else iTXt.
//
// It panics if b.Source is not one of EXIF, IPTC, XMP or COMMENT.
func EncodeMetadataChunk(b Block, compress bool) []byte {
	tc := encodeText(b, compress)
	payload, err := tc.Payload()
	if err != nil {
		// The keywords are valid and compressing to memory does not fail.
		panic(err)
	}
	return Chunk{Type: tc.Kind.chunkType(), Data: payload}.Bytes()
}

func encodeText(b Block, compress bool) TextChunk {
	enc, ok := sourceEncodings[b.Source]
	if !ok {
		panic(fmt.Sprintf("pngmeta: no keyword for source %s", b.Source))
	}

	tc := TextChunk{Keyword: enc.keyword}
	ascii := true

	switch enc.family {
	case RawProfileHex:
		data := b.Data
		switch b.Source {
		case EXIF:
			data = append(bytes.Clone(exifHeader), data...)
		case IPTC:
			data = wrapIPTC(data)
		}
		tc.Text = EncodeRawProfile(enc.profileType, data)
	case DirectUTF8:
		tc.Text = bytes.Clone(b.Data)
		ascii = false
	case PlainText:
		tc.Text = bytes.Clone(b.Data)
		ascii = isASCII(b.Data)
	}

	switch {
	case !ascii:
		tc.Kind = ChunkITXt
		tc.Compressed = compress
	case compress:
		tc.Kind = ChunkZTXt
		tc.Compressed = true
	default:
		tc.Kind = ChunkTEXt
	}

	return tc
}

// MetadataChunk is a decoded metadata chunk.
type MetadataChunk struct {
	Block      Block
	Kind       ChunkKind
	Keyword    string
	Compressed bool
}

// DecodeMetadataChunk decodes a complete chunk as produced by EncodeMetadataChunk.
// The second return value is false if the keyword is not recognized.
func DecodeMetadataChunk(chunk []byte) (MetadataChunk, bool, error) {
	c, _, err := ParseChunk(chunk)
	if err != nil {
		return MetadataChunk{}, false, err
	}
	kind, ok := ChunkKindFromType(c.Type)
	if !ok {
		return MetadataChunk{}, false, newFormatErrorf(msgUnsupportedChunkType, "%q", c.Type[:])
	}
	tc, err := ParseTextChunk(kind, c.Data)
	if err != nil {
		return MetadataChunk{}, false, err
	}
	b, found, err := decodeText(tc)
	if err != nil || !found {
		return MetadataChunk{}, false, err
	}
	return MetadataChunk{
		Block:      b,
		Kind:       kind,
		Keyword:    tc.Keyword,
		Compressed: tc.Compressed,
	}, true, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
