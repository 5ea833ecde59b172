package media

import (
	"strings"

	"katalog-mediow/internal/config"
	"katalog-mediow/internal/models"
)

// extMIME maps the accepted extensions to the content types browsers send
// for them. Kept as a table instead of mime.TypeByExtension, which varies
// between platforms.
var extMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// KindConfig describes what a single asset kind accepts: the upload size
// ceiling and the extension/MIME sets. The lifecycle logic is shared, only
// this configuration differs between photos and videos.
type KindConfig struct {
	MaxBytes   int64
	extensions map[string]bool
	mimeTypes  map[string]bool
}

func NewKindConfig(maxBytes int64, extensions []string) KindConfig {
	cfg := KindConfig{
		MaxBytes:   maxBytes,
		extensions: make(map[string]bool, len(extensions)),
		mimeTypes:  make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		cfg.extensions[ext] = true
		if mt, ok := extMIME[ext]; ok {
			cfg.mimeTypes[mt] = true
		}
	}
	return cfg
}

// Accepts checks the original filename's extension and, when the client
// supplied one, the declared content type. Both checks run before any byte
// is written to storage.
func (c KindConfig) Accepts(ext, contentType string) bool {
	if !c.extensions[strings.ToLower(ext)] {
		return false
	}
	if contentType == "" {
		return true
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return c.mimeTypes[strings.TrimSpace(strings.ToLower(mediaType))]
}

// KindConfigs builds the per-kind configuration from the uploads section of
// the application config.
func KindConfigs(uploads config.UploadsConfig) map[models.Kind]KindConfig {
	return map[models.Kind]KindConfig{
		models.KindPhoto: NewKindConfig(uploads.PhotoMaxBytes, uploads.PhotoExtensions),
		models.KindVideo: NewKindConfig(uploads.VideoMaxBytes, uploads.VideoExtensions),
	}
}
