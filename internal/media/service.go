package media

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"

	"katalog-mediow/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	MaxTitleLen       = 255
	MaxDescriptionLen = 2000
)

// AssetFields are the caller-supplied fields of a new asset.
type AssetFields struct {
	Title           string
	Description     *string
	FullDescription *string
}

// AssetUpdate carries a partial update; nil fields are left untouched.
type AssetUpdate struct {
	Title           *string
	Description     *string
	FullDescription *string
}

// CreateAssetParams is what the repository persists for a new asset.
type CreateAssetParams struct {
	Fields         AssetFields
	StoredFilename string
	OwnerID        int64
}

// DeletedAsset is returned by a bulk delete so the caller can remove the
// corresponding files after the rows are gone.
type DeletedAsset struct {
	ID             int64
	StoredFilename string
}

// AssetRepository is the relational side of an asset. Lookups return
// (nil, nil) when the row does not exist.
type AssetRepository interface {
	ListPage(ctx context.Context, kind models.Kind, limit, offset int) ([]models.Asset, int64, error)
	ListByOwner(ctx context.Context, kind models.Kind, ownerID int64) ([]models.Asset, error)
	GetByID(ctx context.Context, kind models.Kind, id int64) (*models.Asset, error)
	GetManyByIDs(ctx context.Context, kind models.Kind, ids []int64) ([]models.Asset, error)
	CreateAsset(ctx context.Context, kind models.Kind, arg CreateAssetParams) (*models.Asset, error)
	UpdateAsset(ctx context.Context, kind models.Kind, id int64, arg AssetUpdate) (*models.Asset, error)
	DeleteAssets(ctx context.Context, kind models.Kind, ids []int64, principal models.Principal) ([]DeletedAsset, error)
}

// FileStore is the binary side of an asset.
type FileStore interface {
	Save(kind models.Kind, ext string, data io.Reader) (string, error)
	Remove(kind models.Kind, filename string) error
	ResolvePath(kind models.Kind, filename string) string
}

// FileMeta describes an uploaded file before its bytes are read.
type FileMeta struct {
	Filename    string
	Size        int64
	ContentType string
}

// ListResult is one page of assets plus the stable total row count.
type ListResult struct {
	Items []models.Asset `json:"items"`
	Total int64          `json:"total"`
}

// Service drives the asset lifecycle: every operation keeps the row and the
// file consistent, in the order "file before row" on create and "row before
// file" on delete. After a crash the only possible leftover is an orphaned
// file, never a row without a file.
type Service struct {
	repo  AssetRepository
	files FileStore
	kinds map[models.Kind]KindConfig
}

func NewService(repo AssetRepository, files FileStore, kinds map[models.Kind]KindConfig) *Service {
	return &Service{
		repo:  repo,
		files: files,
		kinds: kinds,
	}
}

// KindConfig exposes the per-kind limits, e.g. for http.MaxBytesReader.
func (s *Service) KindConfig(kind models.Kind) (KindConfig, bool) {
	cfg, ok := s.kinds[kind]
	return cfg, ok
}

// ClampPage normalizes pagination input. Out-of-range values fall back to
// the defaults instead of failing the request.
func ClampPage(offset, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func (s *Service) List(ctx context.Context, kind models.Kind, offset, limit int) (*ListResult, error) {
	offset, limit = ClampPage(offset, limit)

	items, total, err := s.repo.ListPage(ctx, kind, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) ListByOwner(ctx context.Context, kind models.Kind, ownerID int64) ([]models.Asset, error) {
	return s.repo.ListByOwner(ctx, kind, ownerID)
}

func (s *Service) Get(ctx context.Context, kind models.Kind, id int64) (*models.Asset, error) {
	asset, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrNotFound
	}
	return asset, nil
}

// Create validates the upload, writes the file, then inserts the row. When
// the insert fails the just-written file is deleted again, so a failed
// create never leaves an orphaned file behind.
func (s *Service) Create(ctx context.Context, kind models.Kind, principal models.Principal, fields AssetFields, file io.Reader, meta FileMeta) (*models.Asset, error) {
	if file == nil {
		return nil, ErrMissingFile
	}

	cfg, ok := s.kinds[kind]
	if !ok {
		return nil, ErrUnsupportedMediaType
	}

	ext := strings.ToLower(filepath.Ext(meta.Filename))
	if !cfg.Accepts(ext, meta.ContentType) {
		return nil, ErrUnsupportedMediaType
	}
	if meta.Size > cfg.MaxBytes {
		return nil, ErrPayloadTooLarge
	}

	filename, err := s.files.Save(kind, ext, file)
	if err != nil {
		return nil, err
	}

	asset, err := s.repo.CreateAsset(ctx, kind, CreateAssetParams{
		Fields:         fields,
		StoredFilename: filename,
		OwnerID:        principal.ID,
	})
	if err != nil {
		// Kompensacja: wiersz nie powstał, więc plik też musi zniknąć
		if rmErr := s.files.Remove(kind, filename); rmErr != nil {
			log.Printf("CRITICAL: failed to remove file %s after insert failure, file is orphaned: %v", filename, rmErr)
		}
		return nil, err
	}

	return asset, nil
}

func (s *Service) Update(ctx context.Context, kind models.Kind, principal models.Principal, id int64, arg AssetUpdate) (*models.Asset, error) {
	asset, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrNotFound
	}

	if !CanMutate(principal, asset.OwnerID) {
		return nil, ErrForbidden
	}

	if err := validateUpdate(arg); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAsset(ctx, kind, id, arg)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Wiersz zniknął między odczytem a zapisem
		return nil, ErrNotFound
	}

	return updated, nil
}

// Delete removes the given assets. The whole batch is rejected when the
// principal may not mutate any one of the existing assets; ids that do not
// exist are silently dropped. Rows are deleted first (with an in-transaction
// ownership re-check, see the repository), then the files best effort: at
// that point the rows are gone and that is the authoritative state.
func (s *Service) Delete(ctx context.Context, kind models.Kind, principal models.Principal, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	assets, err := s.repo.GetManyByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	existingIDs := make([]int64, 0, len(assets))
	for _, asset := range assets {
		if !CanMutate(principal, asset.OwnerID) {
			return nil, &ForbiddenError{AssetID: asset.ID}
		}
		existingIDs = append(existingIDs, asset.ID)
	}

	if len(existingIDs) == 0 {
		return []int64{}, nil
	}

	deleted, err := s.repo.DeleteAssets(ctx, kind, existingIDs, principal)
	if err != nil {
		return nil, err
	}

	deletedIDs := make([]int64, 0, len(deleted))
	for _, d := range deleted {
		if err := s.files.Remove(kind, d.StoredFilename); err != nil {
			log.Printf("ERROR: failed to remove file %s for deleted asset %d, file is orphaned: %v", d.StoredFilename, d.ID, err)
		}
		deletedIDs = append(deletedIDs, d.ID)
	}

	return deletedIDs, nil
}

func validateUpdate(arg AssetUpdate) error {
	if arg.Title != nil {
		title := strings.TrimSpace(*arg.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		if len(*arg.Title) > MaxTitleLen {
			return &ValidationError{Field: "title", Reason: "must be at most 255 characters"}
		}
	}
	if arg.Description != nil && len(*arg.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "must be at most 2000 characters"}
	}
	return nil
}

// ValidateFields guards the repository insert: the title is required and
// both bounded fields must fit their columns.
func ValidateFields(fields AssetFields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(fields.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Reason: "must be at most 255 characters"}
	}
	if fields.Description != nil && len(*fields.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "must be at most 2000 characters"}
	}
	return nil
}
