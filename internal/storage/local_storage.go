package storage

import (
	"errors"
	"fmt"
	"io"
	"katalog-mediow/internal/models"
	"os"
	"path/filepath"
	"time"

	"github.com/jaevor/go-nanoid"
)

var kindDirs = map[models.Kind]string{
	models.KindPhoto: "photos",
	models.KindVideo: "videos",
}

// MediaStorage trzyma pliki zasobów na lokalnym dysku, po jednym katalogu
// na rodzaj. Nazwy plików są generowane przez serwer i nigdy nie są
// nadpisywane ani zmieniane, więc operacje na różnych zasobach nie
// konkurują o tę samą ścieżkę.
type MediaStorage struct {
	basePath string
	suffix   func() string
}

func NewMediaStorage(basePath string) (*MediaStorage, error) {
	for _, dir := range kindDirs {
		if err := os.MkdirAll(filepath.Join(basePath, dir), os.ModePerm); err != nil {
			return nil, err
		}
	}

	generateSuffix, err := nanoid.Standard(6)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	return &MediaStorage{basePath: basePath, suffix: generateSuffix}, nil
}

// BasePath returns the storage root, used to mount the static file server.
func (ms *MediaStorage) BasePath() string {
	return ms.basePath
}

// ResolvePath is pure, it performs no I/O.
func (ms *MediaStorage) ResolvePath(kind models.Kind, filename string) string {
	return filepath.Join(ms.basePath, kindDirs[kind], filename)
}

func (ms *MediaStorage) generateFilename(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), ms.suffix(), ext)
}

// Save writes the uploaded bytes under a generated name and returns that
// name. The file is opened with O_EXCL so an existing file is never
// overwritten; on the (practically impossible) name collision a fresh name
// is generated and the write retried.
func (ms *MediaStorage) Save(kind models.Kind, ext string, data io.Reader) (string, error) {
	maxRetries := 10

	for i := 0; i < maxRetries; i++ {
		filename := ms.generateFilename(ext)
		filePath := ms.ResolvePath(kind, filename)

		file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
		}

		if _, err := io.Copy(file, data); err != nil {
			file.Close()
			os.Remove(filePath)
			return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
		}

		if err := file.Close(); err != nil {
			os.Remove(filePath)
			return "", fmt.Errorf("failed to close file %s: %w", filePath, err)
		}

		return filename, nil
	}

	return "", fmt.Errorf("failed to generate a unique filename after %d attempts", maxRetries)
}

// Remove deletes the stored file. A missing file is not an error, so the
// cleanup after a partial failure can be retried safely.
func (ms *MediaStorage) Remove(kind models.Kind, filename string) error {
	err := os.Remove(ms.ResolvePath(kind, filename))
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
