// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressionMethodDeflate is the only compression method defined by the PNG specification.
const compressionMethodDeflate = 0

// Compress compresses b into a zlib stream (DEFLATE with a zlib header and Adler-32 trailer),
// which is what zTXt and compressed iTXt chunks carry.
func Compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, &CompressionError{Op: "compress", Err: err}
	}
	if _, err := w.Write(b); err != nil {
		return nil, &CompressionError{Op: "compress", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &CompressionError{Op: "compress", Err: err}
	}
	return buf.Bytes(), nil
}

// Decompress inflates the zlib stream in b.
// The inflated size is limited to 10 MB.
func Decompress(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, &CompressionError{Op: "decompress", Err: err}
	}
	defer r.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBufSize+1))
	if err != nil {
		return nil, &CompressionError{Op: "decompress", Err: err}
	}
	if n > maxBufSize {
		return nil, &CompressionError{Op: "decompress", Err: newFormatErrorf(msgChunkLengthOutOfRange, "inflated size exceeds max %d", maxBufSize)}
	}
	return buf.Bytes(), nil
}
