// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package devimage converts box-art into the raw image format read by
// the handheld's game library.
//
// The format is a 4-byte magic (0x20 0x49 0x50 0x41), the image height
// and width as little-endian uint16, then height×width pixels in
// row-major order, four bytes each in B, G, R, A order with straight
// (non-premultiplied) alpha. The device displays library images
// rotated, so box-art is turned 90° counter-clockwise and scaled to a
// fixed height of [Height] pixels before encoding.
package devimage

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Height is the pixel height of every converted image.
const Height = 165

// Magic opens every device image.
var Magic = [4]byte{0x20, 0x49, 0x50, 0x41}

const headerSize = len(Magic) + 4

// Convert decodes a PNG, JPEG, GIF or WebP image and returns it in
// device format.
func Convert(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("devimage: empty image")
	}
	source, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("devimage: decoding box-art: %w", err)
	}
	bounds := source.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("devimage: %s image has no pixels", format)
	}

	rotated := rotateCounterClockwise(source)
	scaled := scaleToHeight(rotated, Height)
	return encode(scaled)
}

// ConvertBase64 is Convert for box-art in its base64 transport form.
func ConvertBase64(transport []byte) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(string(transport))
	if err != nil {
		return nil, fmt.Errorf("devimage: decoding base64 box-art: %w", err)
	}
	return Convert(data)
}

// Decode parses a device image back into pixels.
func Decode(data []byte) (*image.NRGBA, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("devimage: %d bytes is shorter than the header", len(data))
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, fmt.Errorf("devimage: bad magic % x", data[:len(Magic)])
	}
	height := int(binary.LittleEndian.Uint16(data[4:6]))
	width := int(binary.LittleEndian.Uint16(data[6:8]))

	pixels := data[headerSize:]
	if want := width * height * 4; len(pixels) != want {
		return nil, fmt.Errorf("devimage: %dx%d image needs %d pixel bytes, have %d", width, height, want, len(pixels))
	}

	decoded := image.NewNRGBA(image.Rect(0, 0, width, height))
	for offset := 0; offset < len(pixels); offset += 4 {
		decoded.Pix[offset+0] = pixels[offset+2]
		decoded.Pix[offset+1] = pixels[offset+1]
		decoded.Pix[offset+2] = pixels[offset+0]
		decoded.Pix[offset+3] = pixels[offset+3]
	}
	return decoded, nil
}

// rotateCounterClockwise turns source a quarter turn to the left. The
// result is source.Dy() wide and source.Dx() tall.
func rotateCounterClockwise(source image.Image) *image.NRGBA {
	bounds := source.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rotated := image.NewNRGBA(image.Rect(0, 0, height, width))
	for y := range width {
		for x := range height {
			pixel := color.NRGBAModel.Convert(source.At(bounds.Min.X+width-1-y, bounds.Min.Y+x))
			rotated.SetNRGBA(x, y, pixel.(color.NRGBA))
		}
	}
	return rotated
}

func scaleToHeight(source *image.NRGBA, height int) *image.NRGBA {
	bounds := source.Bounds()
	scale := float64(height) / float64(bounds.Dy())
	width := max(1, int(math.Round(float64(bounds.Dx())*scale)))

	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), source, bounds, draw.Src, nil)
	return scaled
}

func encode(source *image.NRGBA) ([]byte, error) {
	bounds := source.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > math.MaxUint16 || height > math.MaxUint16 {
		return nil, fmt.Errorf("devimage: %dx%d exceeds the format's size limit", width, height)
	}

	out := make([]byte, headerSize, headerSize+width*height*4)
	copy(out, Magic[:])
	binary.LittleEndian.PutUint16(out[4:6], uint16(height))
	binary.LittleEndian.PutUint16(out[6:8], uint16(width))

	for y := range height {
		row := source.Pix[y*source.Stride : y*source.Stride+width*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, row[x+2], row[x+1], row[x+0], row[x+3])
		}
	}
	return out, nil
}
