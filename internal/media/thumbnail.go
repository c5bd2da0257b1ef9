package media

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// ThumbnailPath deterministically derives the on-disk thumbnail location
// for a post from its library and content hash (§4.6.4), so regeneration
// and lookup never depend on a row ID or path.
func ThumbnailPath(root string, libraryID int, contentHash string) string {
	return filepath.Join(root, fmt.Sprintf("%d", libraryID), contentHash+".jpg")
}

// GenerateThumbnail decodes srcPath, scales it so its longest side is at
// most maxDim pixels (preserving aspect ratio), and writes a JPEG to
// dstPath, creating parent directories as needed.
func GenerateThumbnail(srcPath, dstPath string, maxDim uint) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("media: decode %q: %w", srcPath, err)
	}

	bounds := img.Bounds()
	width, height := uint(bounds.Dx()), uint(bounds.Dy())
	var targetW, targetH uint
	if width <= maxDim && height <= maxDim {
		targetW, targetH = width, height
	} else if width >= height {
		targetW = maxDim
	} else {
		targetH = maxDim
	}
	thumb := resize.Resize(targetW, targetH, img, resize.Lanczos3)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
}
