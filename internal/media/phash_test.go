package media

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHammingDistance256_IdenticalHashesAreZero(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	if d := HammingDistance256(hash, hash); d != 0 {
		t.Fatalf("expected 0 distance for identical hashes, got %d", d)
	}
}

func TestHammingDistance256_MaximallyDifferent(t *testing.T) {
	zeros := strings.Repeat("00", 32)
	ones := strings.Repeat("ff", 32)
	if d := HammingDistance256(zeros, ones); d != 256 {
		t.Fatalf("expected all 256 bits to differ, got %d", d)
	}
}

func TestHammingDistance256_RejectsMalformedInput(t *testing.T) {
	cases := []struct{ a, b string }{
		{"", strings.Repeat("00", 32)},
		{strings.Repeat("00", 31), strings.Repeat("00", 32)},  // too short
		{"zz" + strings.Repeat("00", 31), strings.Repeat("00", 32)}, // not hex
	}
	for _, c := range cases {
		if d := HammingDistance256(c.a, c.b); d != -1 {
			t.Fatalf("HammingDistance256(%q, %q) = %d, want -1", c.a, c.b, d)
		}
	}
}

func writePNG(t *testing.T, path string, fill func(x, y int) color.Color, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestComputePDQHash_SimilarImagesAreCloseDissimilarAreFar(t *testing.T) {
	dir := t.TempDir()

	lightPath := filepath.Join(dir, "light.png")
	lightVariantPath := filepath.Join(dir, "light_variant.png")
	darkPath := filepath.Join(dir, "dark.png")

	// Near-white image with a faint diagonal gradient, and a lightly
	// perturbed variant of it, vs. a solid black image.
	writePNG(t, lightPath, func(x, y int) color.Color {
		v := uint8(230 + (x+y)%10)
		return color.RGBA{v, v, v, 255}
	}, 64, 64)
	writePNG(t, lightVariantPath, func(x, y int) color.Color {
		v := uint8(225 + (x+y)%10)
		return color.RGBA{v, v, v, 255}
	}, 64, 64)
	writePNG(t, darkPath, func(x, y int) color.Color {
		return color.RGBA{5, 5, 5, 255}
	}, 64, 64)

	lightHash, err := ComputePDQHash(lightPath)
	if err != nil {
		t.Fatalf("ComputePDQHash(light): %v", err)
	}
	variantHash, err := ComputePDQHash(lightVariantPath)
	if err != nil {
		t.Fatalf("ComputePDQHash(variant): %v", err)
	}
	darkHash, err := ComputePDQHash(darkPath)
	if err != nil {
		t.Fatalf("ComputePDQHash(dark): %v", err)
	}

	if len(lightHash) != 64 {
		t.Fatalf("expected a 64-hex-char hash, got %d chars", len(lightHash))
	}

	near := HammingDistance256(lightHash, variantHash)
	far := HammingDistance256(lightHash, darkHash)

	if near >= far {
		t.Fatalf("expected the perturbed near-duplicate (%d) to be closer than the solid-black image (%d)", near, far)
	}
}
