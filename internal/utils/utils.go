package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const inchesPerMetre = 1 / 0.0254

// DecodeImage opens and decodes an image file. Registered formats are
// jpeg, png, webp and bmp.
func DecodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode image %s failed: %w", path, err)
	}
	return img, format, nil
}

// FitMaxSide returns the size that makes the longest side of (w, h) equal
// maxSide, keeping the aspect ratio. Sizes already within bounds are
// returned unchanged, as are all sizes when maxSide <= 0.
func FitMaxSide(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || max(w, h) <= maxSide {
		return w, h
	}
	if w >= h {
		return maxSide, max(1, int(math.Round(float64(h)*float64(maxSide)/float64(w))))
	}
	return max(1, int(math.Round(float64(w)*float64(maxSide)/float64(h)))), maxSide
}

// ResizeMaxSide scales src so that its longest side is maxSide.
// The result is always a fresh *image.NRGBA anchored at the origin.
func ResizeMaxSide(src image.Image, maxSide int) *image.NRGBA {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	nw, nh := FitMaxSide(sw, sh, maxSide)

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	if nw == sw && nh == sh {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// EncodePNG writes img as PNG. A positive dpi is recorded in a pHYs chunk.
func EncodePNG(w io.Writer, img image.Image, dpi float64) error {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return err
	}
	data := buf.Bytes()
	if dpi <= 0 {
		_, err := w.Write(data)
		return err
	}

	// signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 crc)
	const afterIHDR = 8 + 4 + 4 + 13 + 4
	if len(data) < afterIHDR || string(data[12:16]) != "IHDR" {
		return fmt.Errorf("unexpected png layout")
	}
	if _, err := w.Write(data[:afterIHDR]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(dpi)); err != nil {
		return err
	}
	_, err := w.Write(data[afterIHDR:])
	return err
}

// physChunk builds a pHYs chunk with pixels per metre on both axes.
func physChunk(dpi float64) []byte {
	ppm := uint32(math.Round(dpi * inchesPerMetre))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// ReadPNGDPI returns the dpi stored in a PNG pHYs chunk, or 0 if absent.
func ReadPNGDPI(data []byte) float64 {
	pos := 8
	for pos+8 <= len(data) {
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		if typ == "IDAT" || pos+12+n > len(data) {
			return 0
		}
		if typ == "pHYs" && n == 9 && data[pos+16] == 1 {
			ppm := binary.BigEndian.Uint32(data[pos+8 : pos+12])
			return math.Round(float64(ppm)/inchesPerMetre*10) / 10
		}
		pos += 12 + n
	}
	return 0
}

// WriteFileAtomic writes through fn into a hidden temp file next to path
// and renames it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// WritePNG encodes img with the given dpi and writes it atomically to path.
func WritePNG(path string, img image.Image, dpi float64) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		return EncodePNG(w, img, dpi)
	})
}
