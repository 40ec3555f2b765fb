// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

type bytesHolder struct {
	b []byte
}

var bytesPool = &sync.Pool{
	New: func() any {
		return &bytesHolder{
			b: make([]byte, 1024),
		}
	},
}

func getBytes(length int) *bytesHolder {
	b := bytesPool.Get().(*bytesHolder)
	if length > cap(b.b) {
		b.b = make([]byte, length)
	}
	b.b = b.b[:length]
	return b
}

func putBytes(b *bytesHolder) {
	b.b = b.b[:0]
	bytesPool.Put(b)
}

var errShortRead = errors.New("short read")

type decoder interface {
	decode() error
}

// streamReader is a wrapper around a Reader that provides methods to read binary data.
// Note that this is not thread safe.
type streamReader struct {
	// The current Reader.
	r         io.ReadSeeker
	byteOrder binary.ByteOrder

	buf []byte

	isEOF   bool
	readErr error
}

// 10 MB should be plenty for image metadata.
const maxBufSize = 10 * 1024 * 1024

// withPooledBytes reads length bytes from the stream into a pooled buffer and calls f.
// The buffer must not be retained after f returns.
func (e *streamReader) withPooledBytes(length int64, f func(b []byte) error) error {
	if length > maxBufSize {
		return newFormatErrorf(msgChunkLengthOutOfRange, "length %d exceeds max %d", length, maxBufSize)
	}
	if length < 0 {
		return newFormatErrorf(msgChunkLengthOutOfRange, "negative length")
	}

	h := getBytes(int(length))
	defer putBytes(h)

	if _, err := io.ReadFull(e.r, h.b); err != nil {
		e.stop(noSilentEOF(err))
	}

	return f(h.b)
}

// readBytes reads length bytes into a newly allocated slice.
func (e *streamReader) readBytes(length int64) []byte {
	if length > maxBufSize || length < 0 {
		e.stop(newFormatErrorf(msgChunkLengthOutOfRange, "length %d exceeds max %d", length, maxBufSize))
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(e.r, b); err != nil {
		e.stop(noSilentEOF(err))
	}
	return b
}

func (e *streamReader) allocateBuf(length int) {
	if length > cap(e.buf) {
		e.buf = make([]byte, length)
	}
}

func (e *streamReader) read4() uint32 {
	const n = 4
	e.readNIntoBuf(n)
	return e.byteOrder.Uint32(e.buf[:n])
}

// readBytesVolatile reads a slice of bytes from the stream
// which is not guaranteed to be valid after the next read.
func (e *streamReader) readBytesVolatile(n int) []byte {
	e.readNIntoBuf(n)
	return e.buf[:n]
}

func (e *streamReader) readNIntoBuf(n int) {
	if err := e.readNIntoBufE(n); err != nil {
		e.stop(err)
	}
}

func (e *streamReader) readNIntoBufE(n int) error {
	e.allocateBuf(n)
	n2, err := io.ReadFull(e.r, e.buf[:n])
	if err != nil {
		return err
	}
	if n != n2 {
		return errShortRead
	}
	return nil
}

func (e *streamReader) skip(n int64) {
	if _, err := e.r.Seek(n, io.SeekCurrent); err != nil {
		e.stop(err)
	}
}

// noSilentEOF turns io.EOF into io.ErrUnexpectedEOF for reads that must not come up empty.
func noSilentEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (e *streamReader) stop(err error) {
	// Alow one silent EOF.
	// This allows the client to not having to check for EOF on every read.
	if err == io.EOF && !e.isEOF {
		e.isEOF = true
		return
	}
	if err != nil {
		e.readErr = err
	}
	panic(errStop)
}
