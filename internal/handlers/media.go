package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// saveRecipeImage decodes a base64 data URI and writes it under the media
// root, returning the stored relative path.
func saveRecipeImage(dataURI string) (string, error) {
	trimmed := strings.TrimSpace(dataURI)
	if !strings.HasPrefix(trimmed, "data:") {
		return "", fmt.Errorf("image is not a data URI")
	}

	meta, encoded, found := strings.Cut(strings.TrimPrefix(trimmed, "data:"), ",")
	if !found {
		return "", fmt.Errorf("image data URI has no payload")
	}
	mediaType, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return "", fmt.Errorf("image data URI is not base64 encoded")
	}
	extension, ok := imageExtensions[mediaType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", mediaType)
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	nameBytes := make([]byte, 8)
	if _, err := rand.Read(nameBytes); err != nil {
		return "", fmt.Errorf("generate image name: %w", err)
	}

	relative := filepath.Join("recipes", "image", hex.EncodeToString(nameBytes)+extension)
	target := filepath.Join(mediaRoot, relative)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return filepath.ToSlash(relative), nil
}

// mediaURL maps a stored relative path to the public /media/ route.
func mediaURL(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(path, "/")
}
