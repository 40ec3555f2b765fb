// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"errors"
	"io"
)

type decoderPNG struct {
	*baseStreamingDecoder
}

func (e *decoderPNG) decode() error {
	if string(e.readBytesVolatile(len(pngSignature))) != pngSignature {
		return newFormatError(msgInvalidPNGSignature)
	}

	for {
		length := e.read4()
		typ := fourCC(e.readBytesVolatile(4))

		if length > maxChunkLength {
			return newFormatErrorf(msgChunkLengthOutOfRange, "%s chunk length %d", typ, length)
		}

		if typ == chunkTypeIEND {
			return nil
		}

		if err := e.decodeChunk(typ, length); err != nil {
			return err
		}

		e.skip(4) // skip CRC
	}
}

func (e *decoderPNG) decodeChunk(typ fourCC, length uint32) error {
	sources := e.opts.Sources

	switch typ {
	case chunkTypeIHDR:
		if !sources.Has(CONFIG) {
			break
		}
		width, height, err := DecodeIHDR(e.readBytes(int64(length)))
		if err != nil {
			return err
		}
		e.result.ImageConfig = ImageConfig{Width: int(width), Height: int(height)}
		return nil
	case chunkTypeEXIF:
		// http://ftp-osl.osuosl.org/pub/libpng/documents/pngext-1.5.0.html#C.eXIf
		// The data segment of the eXIf chunk contains an Exif profile without the
		// JPEG APP1 marker, length and the "Exif\0\0" identifier code.
		if !sources.Has(EXIF) {
			break
		}
		if length > e.opts.LimitChunkSize {
			e.opts.Warnf("pngmeta: skipping %s chunk of %d bytes", typ, length)
			break
		}
		return e.handleBlock(ExifBlock(e.readBytes(int64(length))))
	case chunkTypeTEXT, chunkTypeZTXT, chunkTypeITXT:
		if length > e.opts.LimitChunkSize {
			e.opts.Warnf("pngmeta: skipping %s chunk of %d bytes", typ, length)
			break
		}
		kind, _ := ChunkKindFromType(typ)
		return e.withPooledBytes(int64(length), func(payload []byte) error {
			keyword, _, err := splitKeyword(payload)
			if err == nil {
				if r, ok := keywordRoutes[string(keyword)]; !ok || !sources.Has(r.Source) {
					// Not something we're asked for, skip the decompression.
					return nil
				}
			}

			b, found, err := DecodeTextChunk(kind, payload)
			if err != nil {
				// The chunk is unusable, but the rest of the image may not be.
				e.opts.Warnf("pngmeta: dropping %s chunk: %v", typ, err)
				return nil
			}
			if !found {
				return nil
			}
			return e.handleBlock(b)
		})
	}

	e.skip(int64(length))
	return nil
}

func (e *decoderPNG) handleBlock(b Block) error {
	if b.Source == XMP && e.opts.HandleXMP != nil {
		r := bytes.NewReader(b.Data)
		if err := e.opts.HandleXMP(r); err != nil {
			return err
		}
		// Read one more byte to make sure we're at EOF.
		var buf [1]byte
		if _, err := r.Read(buf[:]); err != io.EOF {
			return errors.New("expected EOF after XMP")
		}
		return nil
	}
	return e.opts.HandleBlock(b)
}
