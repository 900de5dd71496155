package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader builds a signature plus a well-formed IHDR chunk for w x h.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.Write(Signature)
	chunk := make([]byte, 0, 17)
	chunk = append(chunk, ihdrTag...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 6, 0, 0, 0)
	_ = binary.Write(&buf, binary.BigEndian, uint32(ihdrDataLen))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestReadHeader_KnownDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"background", 1920, 1080},
		{"square icon", 256, 256},
		{"zero", 0, 0},
		{"max uint32", 0xFFFFFFFF, 1},
		{"high bit set", 0x80000000, 0x80000001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadHeader(pngHeader(tt.w, tt.h))
			require.NoError(t, err)
			assert.Equal(t, Header{Width: tt.w, Height: tt.h}, got)
		})
	}
}

func TestReadHeader_SignatureMismatch(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        nil,
		"jpeg":         {0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		"short":        {0x89, 0x50, 0x4E},
		"only first 4": append([]byte{0x89, 0x50, 0x4E, 0x47, 0, 0, 0, 0}, make([]byte, 16)...),
		"text":         []byte("this is definitely not an image file"),
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ReadHeader(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
			var fe *FormatError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestReadHeader_Truncated(t *testing.T) {
	b := pngHeader(64, 64)[:20]
	_, err := ReadHeader(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFixedOffset_IgnoresChunkType(t *testing.T) {
	b := pngHeader(300, 300)
	copy(b[ihdrTypeOffset:], "tEXt")
	h, err := FixedOffset{}.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Header{Width: 300, Height: 300}, h)
}

func TestStrict(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, err := Strict{}.Decode(pngHeader(520, 520))
		require.NoError(t, err)
		assert.Equal(t, "520x520", h.String())
	})
	t.Run("wrong chunk type", func(t *testing.T) {
		b := pngHeader(300, 300)
		copy(b[ihdrTypeOffset:], "tEXt")
		_, err := Strict{}.Decode(b)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("bad crc", func(t *testing.T) {
		b := pngHeader(300, 300)
		b[len(b)-1] ^= 0xFF
		_, err := Strict{}.Decode(b)
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("truncated chunk", func(t *testing.T) {
		_, err := Strict{}.Decode(pngHeader(300, 300)[:26])
		assert.ErrorIs(t, err, ErrFormat)
	})
}

func TestReadFile_MatchesRealEncoder(t *testing.T) {
	dir := t.TempDir()
	sizes := [][2]int{{1920, 1080}, {64, 64}, {100, 200}}
	for _, s := range sizes {
		img := imaging.New(s[0], s[1], color.NRGBA{R: 20, G: 40, B: 60, A: 255})
		var buf bytes.Buffer
		require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
		path := filepath.Join(dir, "img.png")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

		for _, dec := range []Decoder{nil, FixedOffset{}, Strict{}} {
			h, err := ReadFile(path, dec)
			require.NoError(t, err)
			assert.Equal(t, uint32(s[0]), h.Width)
			assert.Equal(t, uint32(s[1]), h.Height)
		}
	}
}

func TestReadFile_FormatErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a-not-a-png-at-all"), 0o600))

	_, err := ReadFile(path, nil)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Path)
	assert.Contains(t, err.Error(), path)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.png"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, ErrFormat))
}
