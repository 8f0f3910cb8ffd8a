package fsops

import "strings"

// displayableImageTypes are the image formats returned as base64 payloads.
var displayableImageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// MimeType maps a file extension to a mime tag. Anything that is not a
// displayable image reads as text/plain.
func MimeType(path string) string {
	ext := ""
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		ext = strings.ToLower(path[idx+1:])
	}
	if mime, ok := displayableImageTypes[ext]; ok {
		return mime
	}
	return "text/plain"
}

// IsImage reports whether a mime tag denotes an image.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
