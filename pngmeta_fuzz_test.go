// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bep/pngmeta"
	qt "github.com/frankban/quicktest"
)

func FuzzDecodePNG(f *testing.F) {
	c := qt.New(f)

	f.Add(newPNG(c))
	f.Add(newPNG(c,
		pngmeta.EncodeMetadataChunk(pngmeta.ExifBlock(testTIFF()), true),
		pngmeta.EncodeMetadataChunk(pngmeta.IPTCBlock(testIPTC()), false),
		pngmeta.EncodeMetadataChunk(pngmeta.XMPBlock([]byte(testXMP)), true),
		pngmeta.EncodeMetadataChunk(pngmeta.CommentBlock("Sunrise"), false),
	))
	f.Add(newPNG(c, textChunk("iTXt", []byte("Description\x00\x01\x00\x00\x00garbage"))))

	f.Fuzz(func(t *testing.T, imageBytes []byte) {
		fuzzDecodeBytes(t, imageBytes)
	})
}

func FuzzDecodeTextChunk(f *testing.F) {
	c := qt.New(f)

	f.Add(0, []byte("Title\x00Hello"))
	f.Add(1, zTXtPayload(c, "Raw profile type exif", string(pngmeta.EncodeRawProfile("exif", testTIFF()))))
	f.Add(2, append([]byte("XML:com.adobe.xmp\x00\x00\x00\x00\x00"), testXMP...))
	f.Add(2, []byte("Description\x00\x01\x00en\x00\x00junk"))

	f.Fuzz(func(t *testing.T, kind int, payload []byte) {
		k := pngmeta.ChunkKind(kind & 3)
		b, found, err := pngmeta.DecodeTextChunk(k, payload)
		if err != nil {
			if !pngmeta.IsFormatError(err) {
				t.Fatalf("unknown error in DecodeTextChunk: %v %T", err, err)
			}
			return
		}
		if !found && b.Source != 0 {
			t.Fatalf("unrecognized chunk returned a block: %v", b.Source)
		}
	})
}

func FuzzRawProfileRoundTrip(f *testing.F) {
	f.Add("exif", []byte("ABC"))
	f.Add("iptc", []byte{})
	f.Add("xmp", bytes.Repeat([]byte{0xff, 0x00}, 40))

	f.Fuzz(func(t *testing.T, profileType string, payload []byte) {
		profileType = strings.TrimSpace(profileType)
		if profileType == "" || strings.ContainsAny(profileType, "\n\r\x00") {
			t.Skip()
		}
		rp, err := pngmeta.DecodeRawProfile(pngmeta.EncodeRawProfile(profileType, payload))
		if err != nil {
			t.Fatalf("DecodeRawProfile: %v", err)
		}
		if rp.Type != profileType || rp.DeclaredLength != len(payload) || !bytes.Equal(rp.Payload, payload) {
			t.Fatalf("round trip mismatch for %q", profileType)
		}
	})
}

func fuzzDecodeBytes(t *testing.T, imageBytes []byte) {
	r := bytes.NewReader(imageBytes)
	_, err := pngmeta.Decode(pngmeta.Options{R: r, Sources: pngmeta.EXIF | pngmeta.IPTC | pngmeta.XMP | pngmeta.COMMENT | pngmeta.CONFIG, Timeout: 600 * time.Millisecond})
	if err != nil {
		if !pngmeta.IsFormatError(err) && !strings.Contains(err.Error(), "timed out") {
			t.Fatalf("unknown error in Decode: %v %T", err, err)
		}
	}
}
