// Package raster decodes image dimensions directly from PNG bytes.
//
// Only the header region is inspected: the 8-byte signature followed by the
// IHDR chunk, whose width and height sit at fixed offsets. No pixel data is
// decoded and no general image library is involved.
package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
)

// Signature is the fixed leading byte sequence of every PNG file.
var Signature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

const (
	widthOffset  = 16
	heightOffset = 20
	// minHeaderLen covers the signature, the IHDR length/type and both dimensions.
	minHeaderLen = 24

	ihdrLengthOffset = 8
	ihdrTypeOffset   = 12
	ihdrDataLen      = 13
	ihdrCRCOffset    = ihdrTypeOffset + 4 + ihdrDataLen
	strictHeaderLen  = ihdrCRCOffset + 4
)

var ihdrTag = []byte("IHDR")

// ErrFormat is matched by every FormatError via errors.Is.
var ErrFormat = errors.New("not a valid PNG file")

// Header holds the decoded image dimensions. It is derived from bytes on
// every read and never cached.
type Header struct {
	Width  uint32 `json:"width" yaml:"width" toml:"width"`
	Height uint32 `json:"height" yaml:"height" toml:"height"`
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d", h.Width, h.Height)
}

// FormatError reports bytes that do not look like a supported PNG.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, ErrFormat.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrFormat.Error(), e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Decoder extracts a Header from raw image bytes.
type Decoder interface {
	Decode(b []byte) (Header, error)
}

// FixedOffset trusts the layout: after the signature check, width and height
// are read as big-endian uint32 values at offsets 16 and 20. A file whose
// first chunk is not IHDR yields meaningless values rather than an error.
type FixedOffset struct{}

func (FixedOffset) Decode(b []byte) (Header, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature) {
		return Header{}, &FormatError{Reason: "signature mismatch"}
	}
	if len(b) < minHeaderLen {
		return Header{}, &FormatError{Reason: fmt.Sprintf("header truncated at %d bytes", len(b))}
	}
	return Header{
		Width:  binary.BigEndian.Uint32(b[widthOffset : widthOffset+4]),
		Height: binary.BigEndian.Uint32(b[heightOffset : heightOffset+4]),
	}, nil
}

// Strict verifies the IHDR chunk before trusting the offsets: the chunk
// length must be 13, the type tag must be IHDR and the chunk CRC must match.
type Strict struct{}

func (Strict) Decode(b []byte) (Header, error) {
	h, err := FixedOffset{}.Decode(b)
	if err != nil {
		return Header{}, err
	}
	if !bytes.Equal(b[ihdrTypeOffset:ihdrTypeOffset+4], ihdrTag) {
		return Header{}, &FormatError{Reason: fmt.Sprintf("first chunk is %q, want IHDR", b[ihdrTypeOffset:ihdrTypeOffset+4])}
	}
	if n := binary.BigEndian.Uint32(b[ihdrLengthOffset : ihdrLengthOffset+4]); n != ihdrDataLen {
		return Header{}, &FormatError{Reason: fmt.Sprintf("IHDR length %d, want %d", n, ihdrDataLen)}
	}
	if len(b) < strictHeaderLen {
		return Header{}, &FormatError{Reason: "IHDR chunk truncated"}
	}
	want := binary.BigEndian.Uint32(b[ihdrCRCOffset:strictHeaderLen])
	if got := crc32.ChecksumIEEE(b[ihdrTypeOffset:ihdrCRCOffset]); got != want {
		return Header{}, &FormatError{Reason: fmt.Sprintf("IHDR crc %08x, want %08x", got, want)}
	}
	return h, nil
}

// ReadHeader decodes b with the default FixedOffset decoder.
func ReadHeader(b []byte) (Header, error) {
	return FixedOffset{}.Decode(b)
}

// ReadFile reads path and decodes it with dec (FixedOffset when nil).
// FormatErrors carry the path.
func ReadFile(path string, dec Decoder) (Header, error) {
	if dec == nil {
		dec = FixedOffset{}
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Header{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	h, err := dec.Decode(data)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		return Header{}, err
	}
	return h, nil
}
