package media

import (
	"encoding/hex"
	"fmt"
	"image"
	"math/bits"
	"os"

	"github.com/nfnt/resize"
)

// pdqGridSize produces a 16x16 luminance grid, one bit per cell, for a
// 256-bit hash — matching the bit width the duplicate-detection job
// compares by Hamming distance (§4.6.3, §4.6.8).
const pdqGridSize = 16

// ComputePDQHash reduces the image at path to a 16x16 grayscale grid and
// encodes, per cell, whether its luminance is at or above the grid mean.
// The result is a deterministic, rotation-and-crop-sensitive but
// scale/compression-tolerant 256-bit fingerprint, hex-encoded to 64
// characters as required by the duplicate-detection job's comparison.
func ComputePDQHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("media: decode %q: %w", path, err)
	}

	small := resize.Resize(pdqGridSize, pdqGridSize, img, resize.Bilinear)
	bounds := small.Bounds()

	lum := make([]float64, pdqGridSize*pdqGridSize)
	var sum float64
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			// Rec. 601 luma, operating on the 16-bit channel values RGBA returns.
			l := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			lum[i] = l
			sum += l
			i++
		}
	}
	mean := sum / float64(len(lum))

	var words [4]uint64
	for idx, l := range lum {
		if l < mean {
			continue
		}
		word := idx / 64
		bit := idx % 64
		words[word] |= 1 << uint(bit)
	}

	raw := make([]byte, 32)
	for w := 0; w < 4; w++ {
		for b := 0; b < 8; b++ {
			raw[w*8+b] = byte(words[w] >> (8 * b))
		}
	}
	return hex.EncodeToString(raw), nil
}

// HammingDistance256 returns the bit difference between two 64-hex-char
// PDQ-256 hashes. It returns -1 if either hash is not exactly 256 bits,
// signalling "not comparable" to the caller (§4.6.8 only considers pairs
// with both hashes present and valid).
func HammingDistance256(a, b string) int {
	aw, ok := parseWords(a)
	if !ok {
		return -1
	}
	bw, ok := parseWords(b)
	if !ok {
		return -1
	}

	dist := 0
	for i := 0; i < 4; i++ {
		dist += bits.OnesCount64(aw[i] ^ bw[i])
	}
	return dist
}

func parseWords(hexHash string) ([4]uint64, bool) {
	var words [4]uint64
	if len(hexHash) != 64 {
		return words, false
	}
	raw, err := hex.DecodeString(hexHash)
	if err != nil || len(raw) != 32 {
		return words, false
	}
	for w := 0; w < 4; w++ {
		var v uint64
		for b := 0; b < 8; b++ {
			v |= uint64(raw[w*8+b]) << (8 * b)
		}
		words[w] = v
	}
	return words, true
}
