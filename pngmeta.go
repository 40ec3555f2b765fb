// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package pngmeta reads and writes Exif, IPTC, XMP and comment metadata
// stored in PNG tEXt, zTXt and iTXt chunks.
//
// Two conventions are supported: the ImageMagick "raw profile" (hex encoded
// binary in a text chunk, see RawProfile) and Adobe's XMP packet in an iTXt
// chunk with the keyword XML:com.adobe.xmp.
//
// All codec functions are stateless and safe for concurrent use.
package pngmeta

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// EXIF is the Exif source.
	EXIF Source = 1 << iota
	// IPTC is the IPTC source.
	IPTC
	// XMP is the XMP source.
	XMP
	// COMMENT is the free text source, e.g. Title or Description.
	COMMENT

	// CONFIG source, which currently is the image dimensions from the IHDR chunk.
	CONFIG
)

// ImageConfig contains basic image configuration.
type ImageConfig struct {
	Width  int
	Height int
}

// DecodeResult contains the result of a Decode operation.
type DecodeResult struct {
	// ImageConfig contains basic image configuration.
	// Note that this will be zero if the CONFIG source was not requested.
	ImageConfig ImageConfig
}

// Decode reads the metadata chunks in the PNG stream in opts.R
// and passes each decoded block to opts.HandleBlock.
//
// A malformed or undecodable text chunk is reported to opts.Warnf and skipped;
// it does not fail the decode.
func Decode(opts Options) (result DecodeResult, err error) {
	var base *baseStreamingDecoder

	errFinal := func(err2 error) error {
		if err2 == nil {
			if base != nil {
				err2 = base.streamErr()
			}
		}

		if err2 == nil {
			return nil
		}

		if err2 == ErrStopWalking {
			return nil
		}

		if err2 == errStop {
			// A read failed; report why, unless it was a clean EOF.
			if base == nil {
				return nil
			}
			err2 = base.streamErr()
		}

		if err2 == nil || err2 == io.EOF {
			return nil
		}

		if isFormatErrorCandidate(err2) {
			err2 = wrapFormatError(msgTruncatedChunk, err2)
		}

		return err2
	}

	defer func() {
		err = errFinal(err)
	}()

	errFromRecover := func(r any) (err2 error) {
		if r == nil {
			return nil
		}
		if errp, ok := r.(error); ok {
			err2 = errp
		} else {
			err2 = fmt.Errorf("unknown panic: %v", r)
		}

		return
	}

	defer func() {
		err2 := errFromRecover(recover())
		if err == nil {
			err = err2
		}
	}()

	if opts.R == nil {
		return result, fmt.Errorf("no reader provided")
	}

	if opts.HandleBlock == nil {
		opts.HandleBlock = func(Block) error { return nil }
	}

	if opts.Sources == 0 {
		opts.Sources = EXIF | IPTC | XMP | COMMENT
	}

	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	if opts.LimitChunkSize == 0 || opts.LimitChunkSize > maxBufSize {
		opts.LimitChunkSize = maxBufSize
	}

	br := &streamReader{
		r:         opts.R,
		byteOrder: binary.BigEndian,
	}

	base = &baseStreamingDecoder{
		streamReader: br,
		opts:         opts,
		result:       &result,
	}

	var dec decoder = &decoderPNG{baseStreamingDecoder: base}

	decode := func() chan error {
		errc := make(chan error, 1)
		go func() {
			defer func() {
				err2 := errFromRecover(recover())
				if err2 != nil {
					errc <- err2
				}
			}()
			errc <- dec.decode()
		}()
		return errc
	}

	if opts.Timeout > 0 {
		select {
		case <-time.After(opts.Timeout):
			err = fmt.Errorf("timed out after %s", opts.Timeout)
		case err = <-decode():
		}
	} else {
		err = dec.decode()
	}

	return
}

// HandleBlockFunc is the function that is called for each decoded block.
type HandleBlockFunc func(b Block) error

// Options contains the options for the Decode function.
type Options struct {
	// The Reader (typically a *os.File) to read the PNG stream from.
	R io.ReadSeeker

	// The function to call for each block.
	// Return ErrStopWalking to stop the decode without an error.
	HandleBlock HandleBlockFunc

	// If HandleXMP is set, the decoder will call this function for each XMP packet
	// instead of HandleBlock.
	// Note that r must be read completely.
	HandleXMP func(r io.Reader) error

	// If set, the decoder will only read the given sources.
	// Note that this is a bitmask and you may send multiple sources at once.
	// Default is EXIF | IPTC | XMP | COMMENT.
	Sources Source

	// Warnf will be called for each chunk that is skipped because of an error.
	Warnf func(string, ...any)

	// Timeout is the maximum time the decoder will spend on reading metadata.
	// Mostly useful for testing.
	// If set to 0, the decoder will not time out.
	Timeout time.Duration

	// LimitChunkSize is the maximum size in bytes of a metadata chunk to read.
	// Larger chunks are skipped with a warning.
	// Default and max value is 10 MB.
	LimitChunkSize uint32
}

// Source is a bitmask and you may send multiple sources at once.
type Source uint32

// Remove removes the given source.
func (t Source) Remove(source Source) Source {
	t &= ^source
	return t
}

// Has returns true if the given source is set.
func (t Source) Has(source Source) bool {
	return t&source != 0
}

// IsZero returns true if the source is zero.
func (t Source) IsZero() bool {
	return t == 0
}

var sourceNames = []struct {
	s    Source
	name string
}{
	{EXIF, "EXIF"},
	{IPTC, "IPTC"},
	{XMP, "XMP"},
	{COMMENT, "COMMENT"},
	{CONFIG, "CONFIG"},
}

func (t Source) String() string {
	var names []string
	rest := t
	for _, sn := range sourceNames {
		if t.Has(sn.s) {
			names = append(names, sn.name)
			rest = rest.Remove(sn.s)
		}
	}
	if len(names) == 0 || rest != 0 {
		return fmt.Sprintf("Source(%d)", uint32(t))
	}
	return strings.Join(names, "|")
}

type baseStreamingDecoder struct {
	*streamReader
	opts   Options
	err    error
	result *DecodeResult
}

func (d *baseStreamingDecoder) streamErr() error {
	if d.err != nil {
		return d.err
	}
	return d.readErr
}
