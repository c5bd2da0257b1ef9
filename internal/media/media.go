// Package media extracts dimensions/MIME type from image and video files,
// generates thumbnails, and computes a 256-bit perceptual hash for
// duplicate detection. Every entry point decodes only as much of the file
// as it needs; the content type always comes from the file extension, not
// from the decoded format.
package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/booruoss/booru/internal/ingest"
)

// Dimensions holds the extracted width/height/contentType for one file
// (§4.6.2).
type Dimensions struct {
	Width       int
	Height      int
	ContentType string
}

// ExtractDimensions decodes just the header of path to obtain its pixel
// dimensions, falling back to a zero-dimension result (with the
// extension-derived content type) for formats this build cannot decode,
// e.g. video. The caller decides whether a zero-dimension result counts as
// failure.
func ExtractDimensions(path string) (Dimensions, error) {
	contentType, ok := ingest.ContentTypeForPath(path)
	if !ok {
		return Dimensions{}, fmt.Errorf("media: unsupported file %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Non-image media (video) has no stdlib decoder; dimensions stay
		// zero but the content type is still meaningful to the caller.
		return Dimensions{ContentType: contentType}, nil
	}

	return Dimensions{Width: cfg.Width, Height: cfg.Height, ContentType: contentType}, nil
}
