// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrStopWalking is a sentinel error to signal that the walk should stop.
	ErrStopWalking = fmt.Errorf("stop walking")

	// Internal error to signal that we should stop any further processing.
	errStop = fmt.Errorf("stop")
)

// FormatError is returned when a chunk or a raw profile is malformed.
type FormatError struct {
	msg string
	err error
}

func (e *FormatError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("pngmeta: %s: %v", e.msg, e.err)
	}
	return "pngmeta: " + e.msg
}

// Unwrap returns the underlying error, if any.
func (e *FormatError) Unwrap() error {
	return e.err
}

// Is reports whether target is a FormatError with the same message.
// A FormatError with an empty message matches any FormatError.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	if !ok {
		return false
	}
	return t.msg == "" || t.msg == e.msg
}

// CompressionError is returned when DEFLATE compression or decompression fails.
type CompressionError struct {
	// Op is either "compress" or "decompress".
	Op  string
	Err error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("pngmeta: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompressionError) Unwrap() error {
	return e.Err
}

// Messages used in FormatError.
const (
	msgInvalidKeyword        = "invalid keyword"
	msgInvalidITXtField      = "invalid iTXt field"
	msgTruncatedChunk        = "truncated chunk"
	msgUnsupportedMethod     = "unsupported compression method"
	msgInvalidFlag           = "invalid compression flag"
	msgDecompressFailed      = "decompress failed"
	msgOddHexDigitCount      = "odd hex digit count"
	msgInvalidRawProfile     = "invalid raw profile"
	msgInvalidIHDR           = "invalid IHDR chunk"
	msgInvalidChunkFraming   = "invalid chunk framing"
	msgUnsupportedChunkType  = "unsupported chunk type"
	msgInvalidPNGSignature   = "invalid PNG signature"
	msgChunkLengthOutOfRange = "chunk length out of range"
)

func newFormatError(msg string) error {
	return &FormatError{msg: msg}
}

func newFormatErrorf(msg string, format string, args ...any) error {
	return &FormatError{msg: msg, err: fmt.Errorf(format, args...)}
}

func wrapFormatError(msg string, err error) error {
	return &FormatError{msg: msg, err: err}
}

// IsFormatError reports whether err is or wraps a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsCompressionError reports whether err is or wraps a CompressionError.
func IsCompressionError(err error) bool {
	var ce *CompressionError
	return errors.As(err, &ce)
}

// isFormatErrorCandidate reports whether err, surfacing from a read,
// means the input was cut short or otherwise malformed.
func isFormatErrorCandidate(err error) bool {
	if err == nil {
		return false
	}
	if IsFormatError(err) {
		return false
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, errShortRead)
}
