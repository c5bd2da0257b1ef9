package ingest

import (
	"path/filepath"
	"strings"
)

// mediaTypesByExt is the static extension→MIME map of supported media
// (spec §6). Extensions are matched case-insensitively, without the dot.
var mediaTypesByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",

	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
}

// ContentTypeForPath returns the supported MIME type for path's extension,
// and false if the extension is not one of the supported media types.
func ContentTypeForPath(path string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	ct, ok := mediaTypesByExt[ext]
	return ct, ok
}

// IsSupportedMedia reports whether path's extension is one of the
// supported media types.
func IsSupportedMedia(path string) bool {
	_, ok := ContentTypeForPath(path)
	return ok
}
